package otpinfra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/iam/otp"
	"github.com/Abraxas-365/quizcraft/pkg/jobx"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
)

// JobTypeOTPEmail is the jobx type of a queued verification mail.
const JobTypeOTPEmail = "otp.email"

type otpEmailPayload struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

// QueuedNotifier hands the mail to a jobx worker. Only the enqueue can fail
// synchronously; the worker attempts the send once.
// The plain code is stored only while the job waits, never longer than
// validFor, and is dropped from the record once the worker is done with it.
type QueuedNotifier struct {
	jobs     *jobx.Client
	queue    string
	validFor time.Duration
}

// NewQueuedNotifier registers the otp.email handler on jobs, delivering
// through direct.
func NewQueuedNotifier(jobs *jobx.Client, queue string, validFor time.Duration, direct otp.NotificationService) *QueuedNotifier {
	jobs.Register(JobTypeOTPEmail, func(ctx context.Context, job *jobx.JobInfo) error {
		var p otpEmailPayload
		if err := job.Decode(&p); err != nil {
			return err
		}
		if err := direct.SendOTP(ctx, p.Contact, p.Code); err != nil {
			logx.WithFields(logx.Fields{"job_id": job.ID, "contact": p.Contact}).
				WithError(err).Error("queued OTP mail failed, client must request a resend")
			return err
		}
		return nil
	})
	return &QueuedNotifier{jobs: jobs, queue: queue, validFor: validFor}
}

var _ otp.NotificationService = (*QueuedNotifier)(nil)

func (n *QueuedNotifier) SendOTP(ctx context.Context, contact string, code string) error {
	raw, err := json.Marshal(otpEmailPayload{Contact: contact, Code: code})
	if err != nil {
		return err
	}
	_, err = n.jobs.Enqueue(ctx, jobx.Job{
		Type:        JobTypeOTPEmail,
		Queue:       n.queue,
		Payload:     raw,
		MaxAttempts: 1,
		Sensitive:   true,
		TTL:         n.validFor,
	})
	return err
}
