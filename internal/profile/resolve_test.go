package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	stderrors "internship-workers/internal/common/errors"
	"internship-workers/internal/matching"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) Get(ctx context.Context, candidateID string) (*Profile, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func TestResolve(t *testing.T) {
	stored := &Profile{
		CandidateID: "cand-1",
		Skills:      []string{"Python", "SQL"},
		Preferences: matching.Preferences{Locations: []string{"Delhi"}, Modality: "onsite"},
	}
	explicit := &matching.Preferences{Sectors: []string{"edtech"}}

	tests := []struct {
		name         string
		candidateID  string
		skills       []string
		prefs        *matching.Preferences
		setupMock    func(m *mockGetter)
		expectedCode stderrors.ErrorCode
		validate     func(t *testing.T, c Candidate)
	}{
		{
			name:        "job skills skip the lookup",
			candidateID: "cand-1",
			skills:      []string{"Go"},
			prefs:       explicit,
			setupMock:   func(m *mockGetter) {},
			validate: func(t *testing.T, c Candidate) {
				assert.Equal(t, []string{"Go"}, c.Skills)
				assert.Equal(t, *explicit, c.Preferences)
				assert.False(t, c.FromProfile)
			},
		},
		{
			name:        "empty skill list is still explicit",
			candidateID: "cand-1",
			skills:      []string{},
			setupMock:   func(m *mockGetter) {},
			validate: func(t *testing.T, c Candidate) {
				assert.Empty(t, c.Skills)
				assert.False(t, c.FromProfile)
			},
		},
		{
			name:        "profile supplies skills and preferences",
			candidateID: "cand-1",
			setupMock: func(m *mockGetter) {
				m.On("Get", mock.Anything, "cand-1").Return(stored, nil)
			},
			validate: func(t *testing.T, c Candidate) {
				assert.Equal(t, stored.Skills, c.Skills)
				assert.Equal(t, stored.Preferences, c.Preferences)
				assert.True(t, c.FromProfile)
			},
		},
		{
			name:        "explicit preferences override stored ones",
			candidateID: "cand-1",
			prefs:       explicit,
			setupMock: func(m *mockGetter) {
				m.On("Get", mock.Anything, "cand-1").Return(stored, nil)
			},
			validate: func(t *testing.T, c Candidate) {
				assert.Equal(t, stored.Skills, c.Skills)
				assert.Equal(t, *explicit, c.Preferences)
			},
		},
		{
			name:         "neither skills nor id",
			setupMock:    func(m *mockGetter) {},
			expectedCode: stderrors.ErrCodeInvalidMatchInput,
		},
		{
			name:        "lookup error is passed through",
			candidateID: "ghost",
			setupMock: func(m *mockGetter) {
				m.On("Get", mock.Anything, "ghost").Return(nil, stderrors.NewCandidateNotFoundError("ghost"))
			},
			expectedCode: stderrors.ErrCodeCandidateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGetter{}
			tt.setupMock(g)

			c, err := Resolve(context.Background(), g, tt.candidateID, tt.skills, tt.prefs)

			if tt.expectedCode != "" {
				require.Error(t, err)
				stdErr, ok := stderrors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, tt.expectedCode, stdErr.Code)
			} else {
				require.NoError(t, err)
				tt.validate(t, c)
			}
			g.AssertExpectations(t)
		})
	}
}

func TestResolve_NoStore(t *testing.T) {
	_, err := Resolve(context.Background(), nil, "cand-1", nil, nil)
	require.Error(t, err)
	stdErr, _ := stderrors.AsStandardError(err)
	assert.Equal(t, stderrors.ErrCodeInvalidMatchInput, stdErr.Code)
}
