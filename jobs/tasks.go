package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStampLogin records an account's last successful login.
	TaskStampLogin = "account:stamp_login"
)

// StampLoginPayload identifies the account and the login instant.
type StampLoginPayload struct {
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// NewStampLoginTask constructs an Asynq task.
func NewStampLoginTask(payload StampLoginPayload) (*asynq.Task, error) {
	if payload.Username == "" {
		return nil, errors.New("stamp login: username required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStampLogin, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// AccountStamper persists the last-login time of an account.
type AccountStamper interface {
	StampLastLogin(ctx context.Context, username string, at time.Time) error
}

// StampLoginJob writes queued login stamps to the account store.
type StampLoginJob struct {
	Accounts AccountStamper
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewStampLoginJob initialises the stamp handler.
func NewStampLoginJob(accounts AccountStamper, logger *slog.Logger, metrics *jobmetrics.Metrics) *StampLoginJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StampLoginJob{Accounts: accounts, Logger: logger, Metrics: metrics}
}

// Handle processes TaskStampLogin tasks.
func (j *StampLoginJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Accounts == nil {
		return errors.New("stamp login: handler not configured")
	}
	var payload StampLoginPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskStampLogin)
	defer func() {
		err = tracker.End(err)
	}()
	if err = j.Accounts.StampLastLogin(ctx, payload.Username, payload.At); err != nil {
		j.Logger.Warn("stamp login failed", slog.String("username", payload.Username), slog.Any("error", err))
		return err
	}
	return nil
}
