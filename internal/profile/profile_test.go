package profile

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	stderrors "internship-workers/internal/common/errors"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/matching"
)

var profileColumns = []string{
	"full_name", "email", "phone", "skills", "preferred_locations", "preferred_sectors",
	"preferred_modality", "min_stipend",
}

func expectProfileRow(mock sqlmock.Sqlmock, candidateID string) {
	rows := sqlmock.NewRows(profileColumns).AddRow(
		"Asha Rao", "asha@example.com", nil,
		[]byte(`["Golang","SQL"]`), []byte(`["Pune"]`), nil, "remote", 10000.0,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM candidate_profiles")).
		WithArgs(candidateID).
		WillReturnRows(rows)
}

// ============================================================================
// READ-THROUGH CACHE
// ============================================================================

func TestStore_Get_ReadThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewStore(db, rdb, 10*time.Minute, logger.NewNoOpLogger())
	expectProfileRow(mock, "cand-1")

	first, err := store.Get(context.Background(), "cand-1")
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", first.Name)
	assert.Empty(t, first.Phone)
	assert.Equal(t, []string{"Golang", "SQL"}, first.Skills)
	assert.Equal(t, []string{"Pune"}, first.Preferences.Locations)
	assert.Nil(t, first.Preferences.Sectors)
	assert.Equal(t, matching.ModalityRemote, first.Preferences.Modality)
	assert.Equal(t, matching.NewNumber(10000), first.Preferences.MinStipend)

	require.True(t, mr.Exists(CacheKey("cand-1")))
	assert.Equal(t, 10*time.Minute, mr.TTL(CacheKey("cand-1")))

	second, err := store.Get(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, mock.ExpectationsWereMet(), "second read must be served from cache")
}

func TestStore_Get_CorruptCacheEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(CacheKey("cand-2"), "{not json"))
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	log, logs := logger.NewObservedLogger(zapcore.DebugLevel)
	store := NewStore(db, rdb, time.Minute, log)
	expectProfileRow(mock, "cand-2")

	p, err := store.Get(context.Background(), "cand-2")
	require.NoError(t, err)
	assert.Equal(t, "cand-2", p.CandidateID)
	assert.Equal(t, 1, logs.FilterMessage("discarding corrupt cached profile").Len())

	cached, err := mr.Get(CacheKey("cand-2"))
	require.NoError(t, err)
	var fromCache Profile
	require.NoError(t, json.Unmarshal([]byte(cached), &fromCache))
	assert.Equal(t, p.Skills, fromCache.Skills)
}

func TestStore_Get_CacheUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(CacheKey("cand-3")).SetErr(errors.New("connection refused"))

	store := NewStore(db, rdb, 5*time.Minute, logger.NewNoOpLogger())
	expectProfileRow(mock, "cand-3")

	p, err := store.Get(context.Background(), "cand-3")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", p.Email)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// ============================================================================
// DATABASE ERRORS
// ============================================================================

func TestStore_Get_Errors(t *testing.T) {
	tests := []struct {
		name         string
		mockQuery    func(mock sqlmock.Sqlmock)
		expectedCode stderrors.ErrorCode
	}{
		{
			name: "unknown candidate",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM candidate_profiles")).
					WithArgs("missing").
					WillReturnRows(sqlmock.NewRows(profileColumns))
			},
			expectedCode: stderrors.ErrCodeCandidateNotFound,
		},
		{
			name: "database failure",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM candidate_profiles")).
					WithArgs("missing").
					WillReturnError(errors.New("connection reset by peer"))
			},
			expectedCode: stderrors.ErrCodeProfileLookupFailed,
		},
		{
			name: "malformed skills column",
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(profileColumns).
					AddRow("x", nil, nil, []byte(`"go"`), nil, nil, nil, nil)
				mock.ExpectQuery(regexp.QuoteMeta("FROM candidate_profiles")).
					WithArgs("missing").
					WillReturnRows(rows)
			},
			expectedCode: stderrors.ErrCodeProfileLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mockQuery(mock)

			store := NewStore(db, nil, time.Minute, logger.NewNoOpLogger())
			_, err = store.Get(context.Background(), "missing")

			require.Error(t, err)
			stdErr, ok := stderrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
