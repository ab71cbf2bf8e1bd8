package notifyrecommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"internship-workers/internal/common/aws"
	"internship-workers/internal/common/errors"
	"internship-workers/internal/common/logger"
	"internship-workers/internal/common/metrics"
	"internship-workers/internal/common/observability"
	"internship-workers/internal/common/validation"
	"internship-workers/pkg/registry"
)

const (
	TaskType = "notify-recommendations"
)

type Handler struct {
	config       *Config
	ses          aws.SESAPI
	sns          aws.SNSAPI
	schema       map[string]interface{}
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
	now          func() time.Time
}

// NewHandler accepts nil SES or SNS clients; the matching channel is then
// treated as disabled.
func NewHandler(
	config *Config,
	ses aws.SESAPI,
	sns aws.SNSAPI,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		ses:          ses,
		sns:          sns,
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
		attribute.String("notification.status", output.Status),
		attribute.StringSlice("notification.channels", output.Channels),
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

	output := &Output{
		NotificationID: uuid.New().String(),
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	channels := h.channels(input)
	if len(channels) == 0 {
		output.Status = StatusDisabled
		h.logger.Info("no notification channel applies", map[string]interface{}{
			"candidateId":  input.CandidateID,
			"emailEnabled": h.config.EmailEnabled,
			"smsEnabled":   h.config.SMSEnabled,
		})
		metrics.NotificationsSent.WithLabelValues("none", StatusDisabled).Inc()
		return output, nil
	}

	msg := buildMessage(input, h.config.MaxItems)
	var lastErr error
	for _, ch := range channels {
		id, err := h.send(ctx, ch, input, msg)
		if err != nil {
			lastErr = err
			output.FailedChannels = append(output.FailedChannels, ch)
			metrics.NotificationsSent.WithLabelValues(ch, "failed").Inc()
			h.logger.Warn("notification channel failed", map[string]interface{}{
				"candidateId": input.CandidateID,
				"channel":     ch,
				"error":       err.Error(),
			})
			continue
		}
		output.Channels = append(output.Channels, ch)
		if output.MessageIDs == nil {
			output.MessageIDs = make(map[string]string)
		}
		output.MessageIDs[ch] = id
		metrics.NotificationsSent.WithLabelValues(ch, StatusSent).Inc()
	}

	if len(output.Channels) == 0 {
		return nil, errors.NewNotificationSendFailedError(strings.Join(output.FailedChannels, ","), lastErr)
	}

	output.Status = StatusSent
	h.logger.Info("recommendations sent", map[string]interface{}{
		"notificationId": output.NotificationID,
		"candidateId":    input.CandidateID,
		"channels":       output.Channels,
		"items":          min(len(input.Recommendations), h.config.MaxItems),
	})
	return output, nil
}

// channels lists the enabled channels the candidate can be reached on.
func (h *Handler) channels(input *Input) []string {
	var out []string
	if h.config.EmailEnabled && h.ses != nil && h.config.FromEmail != "" && strings.TrimSpace(input.Email) != "" {
		out = append(out, ChannelEmail)
	}
	if h.config.SMSEnabled && h.sns != nil && strings.TrimSpace(input.Phone) != "" {
		out = append(out, ChannelSMS)
	}
	return out
}

func (h *Handler) send(ctx context.Context, channel string, input *Input, msg message) (string, error) {
	switch channel {
	case ChannelEmail:
		return aws.SendEmail(ctx, h.ses, aws.Email{
			From:    h.config.FromEmail,
			To:      strings.TrimSpace(input.Email),
			Subject: msg.subject,
			Text:    msg.text,
			HTML:    msg.html,
		})
	case ChannelSMS:
		return aws.SendSMS(ctx, h.sns, h.config.SenderID, strings.TrimSpace(input.Phone), msg.sms)
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
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
