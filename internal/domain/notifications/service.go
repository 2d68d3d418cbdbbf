package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Message is one alert addressed to every recipient at once.
type Message struct {
	Type    string
	From    string
	To      []string
	Subject string
	Body    string
	SentAt  time.Time
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Service emails operators when a batch job fails. Delivery problems are
// logged and never surface to the job.
type Service struct {
	Mailer     Mailer
	From       string
	Recipients []string
	now        func() time.Time
}

func New(mailer Mailer, from string, recipients []string) *Service {
	return &Service{Mailer: mailer, From: from, Recipients: recipients, now: time.Now}
}

func (s *Service) Enabled() bool {
	return s != nil && s.Mailer != nil && len(s.Recipients) > 0
}

func (s *Service) JobFailed(ctx context.Context, jobType, runID string, jobErr error) {
	if !s.Enabled() || jobErr == nil {
		return
	}
	at := s.now()
	msg := Message{
		Type:    TypeJobFailed,
		From:    s.From,
		To:      s.Recipients,
		Subject: fmt.Sprintf("%s %s failed", subjectPrefix, jobType),
		Body:    failureBody(jobType, runID, jobErr, at),
		SentAt:  at,
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		slog.Warn("job failure email send failed", "err", err, "recipients", len(msg.To), "jobType", jobType)
	}
}

func failureBody(jobType, runID string, jobErr error, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n", jobType)
	if runID != "" {
		fmt.Fprintf(&b, "Run: %s\n", runID)
	}
	fmt.Fprintf(&b, "Failed at: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Error: %v\n", jobErr)
	b.WriteString("\nThe run is recorded in job_runs. Imports and syncs are safe to re-run.\n")
	return b.String()
}
