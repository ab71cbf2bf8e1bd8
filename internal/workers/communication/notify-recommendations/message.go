package notifyrecommendations

import (
	"fmt"
	"html"
	"math"
	"strings"

	"internship-workers/internal/matching"
)

const emailSubject = "Your top internship matches"

type message struct {
	subject string
	text    string
	html    string
	sms     string
}

func buildMessage(input *Input, maxItems int) message {
	recs := input.Recommendations
	if len(recs) > maxItems {
		recs = recs[:maxItems]
	}

	name := strings.TrimSpace(input.CandidateName)
	if name == "" {
		name = "there"
	}

	var text, body strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "<p>Hi %s,</p>", html.EscapeString(name))

	if len(recs) == 0 {
		text.WriteString("We could not find internships matching your profile right now. We will let you know when new ones open.\n")
		body.WriteString("<p>We could not find internships matching your profile right now. We will let you know when new ones open.</p>")
		return message{
			subject: emailSubject,
			text:    text.String(),
			html:    body.String(),
			sms:     fmt.Sprintf("Hi %s, no matching internships right now. We will keep looking.", name),
		}
	}

	text.WriteString("Here are the internships that best match your profile:\n\n")
	body.WriteString("<p>Here are the internships that best match your profile:</p><ol>")

	short := make([]string, 0, len(recs))
	for i, rec := range recs {
		label := internshipLabel(rec.Internship)
		pct := percent(rec.Score)
		reason := topReason(rec)

		fmt.Fprintf(&text, "%d. %s (%d%% match)\n", i+1, label, pct)
		fmt.Fprintf(&body, "<li><strong>%s</strong> (%d%% match)", html.EscapeString(label), pct)
		if reason != "" {
			fmt.Fprintf(&text, "   %s\n", reason)
			fmt.Fprintf(&body, "<br><small>%s</small>", html.EscapeString(reason))
		}
		body.WriteString("</li>")

		short = append(short, fmt.Sprintf("%s (%d%%)", titleOrID(rec.Internship), pct))
	}
	body.WriteString("</ol>")

	return message{
		subject: emailSubject,
		text:    text.String(),
		html:    body.String(),
		sms:     fmt.Sprintf("Hi %s, your top internship matches: %s", name, strings.Join(short, ", ")),
	}
}

func internshipLabel(in matching.Internship) string {
	title := titleOrID(in)
	if org := strings.TrimSpace(in.Organization); org != "" {
		return title + " at " + org
	}
	return title
}

func titleOrID(in matching.Internship) string {
	if t := strings.TrimSpace(in.Title); t != "" {
		return t
	}
	return in.ID
}

func percent(score float64) int {
	return int(math.Round(score * 100))
}

// topReason returns the first positive explanation.
func topReason(rec matching.Recommendation) string {
	for _, e := range rec.Explanations {
		if e.Contribution > 0 {
			return e.Reason
		}
	}
	return ""
}
