// Package scheduler posts quotes to channels on configured cron schedules.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
)

// QuotePicker selects the quote to post.
type QuotePicker interface {
	RandomQuote(ctx context.Context, channelID int64) (*models.Quote, error)
}

// Poster delivers the post to the platform.
type Poster interface {
	SendMessage(ctx context.Context, channelID int64, content string) (*platform.Message, error)
}

// Job is one recurring post: a cron schedule, the channel to post into,
// and an optional lead line shown above the quote.
type Job struct {
	ChannelID int64  `json:"channel_id,string"`
	Schedule  string `json:"schedule"`
	Lead      string `json:"lead,omitempty"`
}

// ParseJobs decodes the RECURRING_POSTS configuration value.
func ParseJobs(raw string) ([]Job, error) {
	if raw == "" {
		return nil, nil
	}
	var jobs []Job
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		return nil, fmt.Errorf("parsing recurring posts: %w", err)
	}
	for _, job := range jobs {
		if job.ChannelID <= 0 || job.Schedule == "" {
			return nil, fmt.Errorf("recurring post needs a channel id and a schedule: %+v", job)
		}
	}
	return jobs, nil
}

// Scheduler runs recurring quote posts.
type Scheduler struct {
	cron   *cron.Cron
	picker QuotePicker
	poster Poster
	logger *slog.Logger
}

// New creates a Scheduler. Jobs are added with AddJobs before Start.
func New(picker QuotePicker, poster Poster, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		picker: picker,
		poster: poster,
		logger: logger,
	}
}

// AddJobs registers the given jobs. Invalid schedules fail up front.
func (s *Scheduler) AddJobs(jobs []Job) error {
	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Schedule, func() { s.post(job) }); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", job.Schedule, err)
		}
		s.logger.Info("recurring post scheduled", "channel_id", job.ChannelID, "schedule", job.Schedule)
	}
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running post to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) post(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quote, err := s.picker.RandomQuote(ctx, job.ChannelID)
	if err != nil {
		s.logger.Error("picking scheduled quote failed", "channel_id", job.ChannelID, "error", err)
		return
	}
	if quote == nil {
		s.logger.Info("no quotes to post", "channel_id", job.ChannelID)
		return
	}

	content := fmt.Sprintf("%q (%s)\n%s", quote.Content, quote.AuthorName, quote.JumpURL)
	if job.Lead != "" {
		content = job.Lead + "\n" + content
	}
	if _, err := s.poster.SendMessage(ctx, job.ChannelID, content); err != nil {
		s.logger.Error("posting scheduled quote failed", "channel_id", job.ChannelID, "error", err)
		return
	}
	s.logger.Info("scheduled quote posted", "channel_id", job.ChannelID, "message_id", quote.MessageID)
}
