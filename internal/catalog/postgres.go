package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"internship-workers/internal/common/errors"
	"internship-workers/internal/matching"
)

const listInternshipsQuery = `
	SELECT id, title, organization, required_skills, preferred_skills, locations,
	       sector, modality, capacity, application_deadline, stipend_min, duration_months
	FROM internships
	WHERE is_active = TRUE
	ORDER BY created_at, id
	LIMIT $1`

// Repository reads open internships from Postgres. Skill and location lists
// are JSONB arrays; every other column except id may be NULL.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Name() string { return "postgres" }

func (r *Repository) ListInternships(ctx context.Context, q Query) ([]matching.Internship, error) {
	rows, err := r.db.QueryContext(ctx, listInternshipsQuery, q.limit())
	if err != nil {
		return nil, r.mapError(ctx, err)
	}
	defer rows.Close()

	var out []matching.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, errors.NewCatalogLoadFailedError(r.Name(), err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError(ctx, err)
	}
	return out, nil
}

func (r *Repository) mapError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError("list_internships")
	}
	return errors.NewCatalogLoadFailedError(r.Name(), err)
}

func scanInternship(rows *sql.Rows) (matching.Internship, error) {
	var (
		in                                   matching.Internship
		title, org, sector, modality         sql.NullString
		required, preferred, locations       []byte
		capacity, stipendMin, durationMonths sql.NullFloat64
		deadline                             sql.NullTime
	)

	if err := rows.Scan(
		&in.ID, &title, &org, &required, &preferred, &locations,
		&sector, &modality, &capacity, &deadline, &stipendMin, &durationMonths,
	); err != nil {
		return in, err
	}

	var err error
	if in.RequiredSkills, err = decodeList(required); err != nil {
		return in, fmt.Errorf("internship %s required_skills: %w", in.ID, err)
	}
	if in.PreferredSkills, err = decodeList(preferred); err != nil {
		return in, fmt.Errorf("internship %s preferred_skills: %w", in.ID, err)
	}
	if in.Locations, err = decodeList(locations); err != nil {
		return in, fmt.Errorf("internship %s locations: %w", in.ID, err)
	}

	in.Title = title.String
	in.Organization = org.String
	in.Sector = sector.String
	in.Modality = matching.Modality(modality.String)
	in.Capacity = nullNumber(capacity)
	in.StipendMin = nullNumber(stipendMin)
	in.DurationMonths = nullNumber(durationMonths)
	if deadline.Valid {
		in.ApplicationDeadline = deadline.Time.UTC().Format(time.RFC3339)
	}
	return in, nil
}

func decodeList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullNumber(n sql.NullFloat64) matching.Number {
	if !n.Valid {
		return matching.Number{}
	}
	return matching.NewNumber(n.Float64)
}
