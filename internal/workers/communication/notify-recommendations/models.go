package notifyrecommendations

import "internship-workers/internal/matching"

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	CandidateID     string                    `json:"candidateId"`
	CandidateName   string                    `json:"candidateName"`
	Email           string                    `json:"email"`
	Phone           string                    `json:"phone"`
	Recommendations []matching.Recommendation `json:"recommendations"`
}

type Output struct {
	NotificationID string            `json:"notificationId"`
	Status         string            `json:"status"`
	Channels       []string          `json:"channels"`
	FailedChannels []string          `json:"failedChannels,omitempty"`
	MessageIDs     map[string]string `json:"messageIds,omitempty"`
	SentAt         string            `json:"sentAt"`
}
