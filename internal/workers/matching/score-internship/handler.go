package scoreinternship

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

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
	TaskType = "score-internship"
)

type Handler struct {
	config       *Config
	engine       *matching.Engine
	profiles     profile.Getter
	schema       map[string]interface{}
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(
	config *Config,
	engine *matching.Engine,
	profiles profile.Getter,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		profiles:     profiles,
		schema:       registry.MustActivity(TaskType).InputSchema,
		errorHandler: errors.NewErrorHandler(scoped),
		obs:          obs,
		logger:       scoped,
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
		attribute.String("internship.id", output.Recommendation.Internship.ID),
		attribute.Float64("score", output.Recommendation.Score),
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
	if input.Internship.ID == "" {
		return nil, errors.NewInvalidMatchInputError("internship.id is required")
	}

	candidate, err := profile.Resolve(ctx, h.profiles, input.CandidateID, input.CandidateSkills, input.Preferences)
	if err != nil {
		return nil, err
	}

	cfg := input.MatchConfig.Apply(h.config.Matching)
	skills := h.engine.NormalizeSkills(candidate.Skills)
	rec := h.engine.Score(skills, candidate.Preferences, input.Internship, &cfg)

	h.logger.Debug("internship scored", map[string]interface{}{
		"candidateId":  candidate.ID,
		"internshipId": rec.Internship.ID,
		"score":        rec.Score,
		"fromProfile":  candidate.FromProfile,
	})

	return &Output{Recommendation: rec}, nil
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
