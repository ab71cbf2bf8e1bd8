package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "invalid input is thrown as is",
			err:         NewInvalidMatchInputError("internship is required"),
			wantCode:    "INVALID_MATCH_INPUT",
			wantRetries: 0,
		},
		{
			name:        "catalog failures share a boundary event",
			err:         NewCatalogLoadFailedError("postgres", fmt.Errorf("connection refused")),
			wantCode:    "CATALOG_UNAVAILABLE",
			wantRetries: 3,
		},
		{
			name:        "search timeout retries twice",
			err:         NewSearchTimeoutError("internships"),
			wantCode:    "CATALOG_UNAVAILABLE",
			wantRetries: 2,
		},
		{
			name:        "unmapped code passes through",
			err:         NewBusinessRuleError("Catalog is empty", ""),
			wantCode:    "BUSINESS_RULE_VIOLATION",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestBPMNError_ToErrorVariables(t *testing.T) {
	stdErr := NewCandidateNotFoundError("cand-42").WithMetadata("candidateId", "cand-42")
	vars := ConvertToBPMNError(stdErr).ToErrorVariables()

	assert.Equal(t, "CANDIDATE_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "Candidate profile not found", vars["errorMessage"])
	assert.Equal(t, "cand-42", vars["candidateId"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("ranking: %w", NewQueryTimeoutError("internships"))
	stdErr := Normalize(wrapped)
	assert.Equal(t, ErrCodeQueryTimeout, stdErr.Code)

	plain := Normalize(context.Canceled)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)
	assert.ErrorIs(t, plain, context.Canceled)
}

func TestRetryBudget(t *testing.T) {
	tests := []struct {
		name       string
		err        *StandardError
		jobRetries int32
		want       int
		wantRetry  bool
	}{
		{"retryable with full budget", NewDatabaseConnectionFailedError(fmt.Errorf("down")), 5, 3, true},
		{"capped by remaining job retries", NewDatabaseConnectionFailedError(fmt.Errorf("down")), 2, 1, true},
		{"last attempt throws", NewDatabaseConnectionFailedError(fmt.Errorf("down")), 1, 0, false},
		{"non retryable", NewCandidateNotFoundError("x"), 3, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, retry := retryBudget(tt.err, tt.jobRetries)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRetry, retry)
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PROFILE", GetErrorCategory(ErrCodeCandidateNotFound))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeSearchTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSend))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMatchInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	require.True(t, IsRetryableErrorCode(ErrCodeNotificationSend))
	require.False(t, IsRetryableErrorCode(ErrCodeCatalogEmpty))
}
