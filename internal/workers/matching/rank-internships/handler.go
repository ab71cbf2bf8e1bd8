package rankinternships

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"internship-workers/internal/catalog"
	"internship-workers/internal/common/errors"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/common/metrics"
	"internship-workers/internal/common/observability"
	"internship-workers/internal/common/validation"
	"internship-workers/internal/matching"
	"internship-workers/internal/profile"
	"internship-workers/pkg/registry"
)

const (
	TaskType = "rank-internships"

	sourceJob = "job"
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	profiles     profile.Getter
	catalog      catalog.Source
	schema       map[string]interface{}
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(
	config *Config,
	engine *matching.Engine,
	profiles profile.Getter,
	source catalog.Source,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		profiles:     profiles,
		catalog:      source,
		schema:       registry.MustActivity(TaskType).InputSchema,
		errorHandler: errors.NewErrorHandler(scoped),
		obs:          obs,
		logger:       scoped,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))
	defer span.End()

	input, err := h.parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("ranking.id", output.RankingID),
		attribute.Int("ranking.considered", output.Considered),
		attribute.Int("ranking.returned", output.Returned),
	)
	h.completeJob(client, job, output)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	result, err := validation.ValidateVariables(h.schema, variables)
	if err != nil {
		return nil, errors.NewInvalidMatchInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidMatchInputError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidMatchInputError("input cannot be nil")
	}

	candidate, err := profile.Resolve(ctx, h.profiles, input.CandidateID, input.CandidateSkills, input.Preferences)
	if err != nil {
		return nil, err
	}

	internships, source, err := h.loadCatalog(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(internships) == 0 {
		h.logger.Info("catalog is empty, returning no recommendations", map[string]interface{}{
			"code":        errors.ErrCodeCatalogEmpty,
			"source":      source,
			"candidateId": candidate.ID,
		})
	}

	cfg := input.MatchConfig.Apply(h.config.Matching)
	topN := input.TopN
	if topN <= 0 {
		topN = h.config.TopN
	}

	ranking := h.engine.Rank(matching.RankRequest{
		CandidateSkills: candidate.Skills,
		Preferences:     candidate.Preferences,
		Catalog:         internships,
		TopN:            topN,
		Filters:         input.Filters,
		Config:          &cfg,
	})
	h.recordRanking(source, ranking)

	output := &Output{
		RankingID:       uuid.New().String(),
		Recommendations: ranking.Recommendations,
		Considered:      ranking.Considered,
		Eligible:        ranking.Eligible,
		Returned:        len(ranking.Recommendations),
		RankedAt:        h.now().UTC().Format(time.RFC3339),
	}
	if output.Recommendations == nil {
		output.Recommendations = []matching.Recommendation{}
	}

	h.logger.Info("internships ranked", map[string]interface{}{
		"rankingId":   output.RankingID,
		"candidateId": candidate.ID,
		"source":      source,
		"considered":  output.Considered,
		"eligible":    output.Eligible,
		"returned":    output.Returned,
	})
	return output, nil
}

// loadCatalog returns the job's internships when present, otherwise queries
// the configured source.
func (h *Handler) loadCatalog(ctx context.Context, input *Input) ([]matching.Internship, string, error) {
	if input.Internships != nil {
		return input.Internships, sourceJob, nil
	}
	if h.catalog == nil {
		return nil, "", errors.NewInvalidMatchInputError("internships is required when no catalog source is configured")
	}

	internships, err := h.catalog.ListInternships(ctx, catalog.Query{
		Filters: input.Filters,
		Limit:   h.config.CatalogLimit,
	})
	if err != nil {
		return nil, h.catalog.Name(), err
	}
	return internships, h.catalog.Name(), nil
}

func (h *Handler) recordRanking(source string, r matching.Ranking) {
	metrics.RankingsTotal.WithLabelValues(source).Inc()
	metrics.InternshipsConsidered.Add(float64(r.Considered))
	for reason, n := range r.Excluded {
		metrics.InternshipsExcluded.WithLabelValues(string(reason)).Add(float64(n))
	}
	for _, rec := range r.Recommendations {
		metrics.RecommendationScore.Observe(rec.Score)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(context.Background(), TaskType, "completed")
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(context.Background(), TaskType, "failed")
}

// Execute runs the job logic without a Zeebe client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
