package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"internship-workers/internal/common/errors"
	"internship-workers/internal/matching"
)

// Search loads internships from an Elasticsearch index whose documents use
// the same camelCase fields as matching.Internship.
type Search struct {
	client *elasticsearch.Client
	index  string
}

func NewSearch(client *elasticsearch.Client, index string) *Search {
	return &Search{client: client, index: index}
}

func (s *Search) Name() string { return "elasticsearch" }

func (s *Search) ListInternships(ctx context.Context, q Query) ([]matching.Internship, error) {
	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, errors.NewCatalogSearchFailedError(s.index, err)
	}

	size := q.limit()
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(s.index)
		}
		return nil, errors.NewCatalogSearchFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewCatalogIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewCatalogSearchFailedError(s.index, fmt.Errorf("search query failed: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewCatalogSearchFailedError(s.index, fmt.Errorf("decode response: %w", err))
	}

	out := make([]matching.Internship, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		in := hit.Source
		if in.ID == "" {
			in.ID = hit.ID
		}
		out = append(out, in)
	}
	return out, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string              `json:"_id"`
			Source matching.Internship `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildQuery turns the match filters into a bool query. Each text filter
// accepts either an analyzed match (text mappings) or a case-insensitive
// term (keyword mappings), so the prefilter keeps everything the ranker's
// case-insensitive comparison would keep. Numeric bounds let documents
// without the field through.
func BuildQuery(q Query) map[string]interface{} {
	filterClauses := []interface{}{}

	if f := q.Filters; f != nil {
		if loc := strings.TrimSpace(f.Location); loc != "" {
			filterClauses = append(filterClauses, matchClause("locations", loc))
		}
		if sector := strings.TrimSpace(f.Sector); sector != "" {
			filterClauses = append(filterClauses, matchClause("sector", sector))
		}
		if m := matching.ParseModality(string(f.Modality)); !m.IsAny() {
			filterClauses = append(filterClauses, matchClause("modality", string(m)))
		}
		if f.MinStipend.Valid {
			filterClauses = append(filterClauses, minOrMissing("stipendMin", f.MinStipend.Value))
		}
		if f.MinDurationMonths.Valid {
			filterClauses = append(filterClauses, minOrMissing("durationMonths", f.MinDurationMonths.Value))
		}
	}

	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{"match_all": map[string]interface{}{}},
		},
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{"_doc"},
	}
}

func matchClause(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"match": map[string]interface{}{
						field: map[string]interface{}{"query": value, "operator": "and"},
					},
				},
				map[string]interface{}{
					"term": map[string]interface{}{
						field: map[string]interface{}{"value": value, "case_insensitive": true},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

func minOrMissing(field string, min float64) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"range": map[string]interface{}{field: map[string]interface{}{"gte": min}},
				},
				map[string]interface{}{
					"bool": map[string]interface{}{
						"must_not": map[string]interface{}{"exists": map[string]interface{}{"field": field}},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}
