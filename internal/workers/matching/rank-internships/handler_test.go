package rankinternships

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"internship-workers/internal/catalog"
	"internship-workers/internal/common/errors"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/common/metrics"
	"internship-workers/internal/matching"
	"internship-workers/internal/profile"
)

// ==========================
// Mock Implementations
// ==========================

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Get(ctx context.Context, candidateID string) (*profile.Profile, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListInternships(ctx context.Context, q catalog.Query) ([]matching.Internship, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]matching.Internship), args.Error(1)
}

func (m *mockSource) Name() string { return "mock" }

// ==========================
// Test Helpers
// ==========================

var fixedNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		Matching:     matching.DefaultMatchConfig(),
		TopN:         10,
		CatalogLimit: 200,
	}
}

func newTestHandler(t *testing.T, profiles profile.Getter, source catalog.Source) *Handler {
	t.Helper()
	engine := matching.NewEngine(nil, func() time.Time { return fixedNow })
	h := NewHandler(createTestConfig(), engine, profiles, source, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

func testCatalog() []matching.Internship {
	return []matching.Internship{
		{ID: "I1", RequiredSkills: []string{"react"}},
		{ID: "I2", RequiredSkills: []string{"java"}},
		{ID: "I3", RequiredSkills: []string{"react"}, Capacity: matching.NewNumber(0)},
		{ID: "I4", RequiredSkills: []string{"react"}, ApplicationDeadline: "2025-01-01"},
	}
}

func ids(recs []matching.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Internship.ID
	}
	return out
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		setupProfiles  func(m *mockProfiles)
		setupSource    func(m *mockSource)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "ranks job internships",
			input: &Input{
				CandidateSkills: []string{"React"},
				Internships:     testCatalog(),
			},
			setupProfiles: func(m *mockProfiles) {},
			setupSource:   func(m *mockSource) {},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"I1", "I2"}, ids(output.Recommendations))
				assert.Equal(t, 0.625, output.Recommendations[0].Score)
				assert.Equal(t, 4, output.Considered)
				assert.Equal(t, 2, output.Eligible)
				assert.Equal(t, 2, output.Returned)
				assert.Equal(t, "2026-01-15T10:00:00Z", output.RankedAt)
				_, err := uuid.Parse(output.RankingID)
				assert.NoError(t, err)
			},
		},
		{
			name: "top n truncates",
			input: &Input{
				CandidateSkills: []string{"React"},
				Internships:     testCatalog(),
				TopN:            1,
			},
			setupProfiles: func(m *mockProfiles) {},
			setupSource:   func(m *mockSource) {},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"I1"}, ids(output.Recommendations))
				assert.Equal(t, 2, output.Eligible)
				assert.Equal(t, 1, output.Returned)
			},
		},
		{
			name: "required skills gate from match config",
			input: &Input{
				CandidateSkills: []string{"React"},
				Internships:     testCatalog(),
				MatchConfig:     &matching.ConfigPatch{RequireAllRequiredSkills: boolPtr(true)},
			},
			setupProfiles: func(m *mockProfiles) {},
			setupSource:   func(m *mockSource) {},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"I1"}, ids(output.Recommendations))
			},
		},
		{
			name: "catalog loaded from source with filters",
			input: &Input{
				CandidateID: "cand-1",
				Filters:     &matching.MatchFilters{Sector: "fintech"},
			},
			setupProfiles: func(m *mockProfiles) {
				m.On("Get", mock.Anything, "cand-1").Return(&profile.Profile{
					CandidateID: "cand-1",
					Skills:      []string{"Go"},
				}, nil)
			},
			setupSource: func(m *mockSource) {
				m.On("ListInternships", mock.Anything, catalog.Query{
					Filters: &matching.MatchFilters{Sector: "fintech"},
					Limit:   200,
				}).Return([]matching.Internship{
					{ID: "F1", RequiredSkills: []string{"golang"}, Sector: "Fintech"},
					{ID: "E1", RequiredSkills: []string{"golang"}, Sector: "edtech"},
				}, nil)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, []string{"F1"}, ids(output.Recommendations))
				assert.Equal(t, 2, output.Considered)
				assert.Equal(t, 1, output.Eligible)
			},
		},
		{
			name: "empty catalog completes with no recommendations",
			input: &Input{
				CandidateSkills: []string{"Go"},
			},
			setupProfiles: func(m *mockProfiles) {},
			setupSource: func(m *mockSource) {
				m.On("ListInternships", mock.Anything, mock.Anything).Return([]matching.Internship{}, nil)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.NotNil(t, output.Recommendations)
				assert.Empty(t, output.Recommendations)
				assert.Zero(t, output.Considered)
				assert.Zero(t, output.Returned)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(mockProfiles)
			source := new(mockSource)
			tt.setupProfiles(profiles)
			tt.setupSource(source)
			handler := newTestHandler(t, profiles, source)

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)

			profiles.AssertExpectations(t)
			source.AssertExpectations(t)
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		nilSource     bool
		setupProfiles func(m *mockProfiles)
		setupSource   func(m *mockSource)
		expectedCode  errors.ErrorCode
	}{
		{
			name:          "nil input",
			setupProfiles: func(m *mockProfiles) {},
			setupSource:   func(m *mockSource) {},
			expectedCode:  errors.ErrCodeInvalidMatchInput,
		},
		{
			name:  "candidate not found",
			input: &Input{CandidateID: "ghost"},
			setupProfiles: func(m *mockProfiles) {
				m.On("Get", mock.Anything, "ghost").Return(nil, errors.NewCandidateNotFoundError("ghost"))
			},
			setupSource:  func(m *mockSource) {},
			expectedCode: errors.ErrCodeCandidateNotFound,
		},
		{
			name:          "search failure",
			input:         &Input{CandidateSkills: []string{"go"}},
			setupProfiles: func(m *mockProfiles) {},
			setupSource: func(m *mockSource) {
				m.On("ListInternships", mock.Anything, mock.Anything).
					Return(nil, errors.NewCatalogSearchFailedError("internships", fmt.Errorf("503")))
			},
			expectedCode: errors.ErrCodeCatalogSearchFailed,
		},
		{
			name:          "no source and no internships",
			input:         &Input{CandidateSkills: []string{"go"}},
			nilSource:     true,
			setupProfiles: func(m *mockProfiles) {},
			setupSource:   func(m *mockSource) {},
			expectedCode:  errors.ErrCodeInvalidMatchInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(mockProfiles)
			source := new(mockSource)
			tt.setupProfiles(profiles)
			tt.setupSource(source)

			var src catalog.Source = source
			if tt.nilSource {
				src = nil
			}
			handler := newTestHandler(t, profiles, src)

			output, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
		})
	}
}

func TestHandler_Execute_PostgresCatalog(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	columns := []string{
		"id", "title", "organization", "required_skills", "preferred_skills", "locations",
		"sector", "modality", "capacity", "application_deadline", "stipend_min", "duration_months",
	}
	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM internships")).
		WithArgs(200).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("P1", "Data Intern", "Acme", []byte(`["python","sql"]`), []byte(`["pandas"]`),
				[]byte(`["Delhi"]`), "analytics", "onsite", 2.0, nil, 10000.0, 3.0).
			AddRow("P2", "Web Intern", "Beta", []byte(`["react"]`), []byte(`[]`),
				[]byte(`["Remote"]`), "saas", "remote", 1.0, nil, nil, nil))

	handler := newTestHandler(t, nil, catalog.NewRepository(db))

	output, err := handler.Execute(context.Background(), &Input{CandidateSkills: []string{"Python3", "SQL", "pd"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, ids(output.Recommendations))
	assert.Equal(t, 1.0, output.Recommendations[0].Breakdown.RequiredCoverage)
	assert.Equal(t, 1.0, output.Recommendations[0].Breakdown.PreferredCoverage)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHandler_Execute_RecordsMetrics(t *testing.T) {
	handler := newTestHandler(t, nil, nil)

	rankingsBefore := testutil.ToFloat64(metrics.RankingsTotal.WithLabelValues("job"))
	capacityBefore := testutil.ToFloat64(metrics.InternshipsExcluded.WithLabelValues("capacity"))
	deadlineBefore := testutil.ToFloat64(metrics.InternshipsExcluded.WithLabelValues("deadline"))

	_, err := handler.Execute(context.Background(), &Input{
		CandidateSkills: []string{"react"},
		Internships:     testCatalog(),
	})
	require.NoError(t, err)

	assert.Equal(t, rankingsBefore+1, testutil.ToFloat64(metrics.RankingsTotal.WithLabelValues("job")))
	assert.Equal(t, capacityBefore+1, testutil.ToFloat64(metrics.InternshipsExcluded.WithLabelValues("capacity")))
	assert.Equal(t, deadlineBefore+1, testutil.ToFloat64(metrics.InternshipsExcluded.WithLabelValues("deadline")))
}

// ==========================
// Input validation
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
	}{
		{name: "skills only", variables: `{"candidateSkills":["go"]}`},
		{name: "candidate id only", variables: `{"candidateId":"cand-1","topN":5}`},
		{name: "neither candidate nor skills", variables: `{"topN":5}`, wantErr: true},
		{name: "internship without id", variables: `{"candidateSkills":["go"],"internships":[{"sector":"x"}]}`, wantErr: true},
		{name: "fractional top n", variables: `{"candidateSkills":["go"],"topN":2.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, nil, nil)

			_, err := handler.parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := errors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeInvalidMatchInput, stdErr.Code)
				return
			}
			require.NoError(t, err)
		})
	}
}

func boolPtr(v bool) *bool { return &v }
