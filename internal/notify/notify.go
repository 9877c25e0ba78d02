// Package notify pushes per-job outcome notifications to Telegram.
//
// The channel is strictly best-effort: a full queue or a failed send is
// logged and dropped, never allowed to stall or fail the scheduling loop.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"vidforge/internal/automation"
	logx "vidforge/pkg/logx"
)

type Config struct {
	Token        string
	ChatID       int64
	RatePerSec   int
	OnlyFailures bool
}

// Service implements automation.Recorder over a Telegram bot.
type Service struct {
	cfg     Config
	bot     *tele.Bot
	limiter *rate.Limiter
	queue   chan string
	log     logx.Logger
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	bot, err := tele.NewBot(tele.Settings{
		Token: cfg.Token,
		// No poller: this bot only sends.
		Offline: false,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		cfg:     cfg,
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		queue:   make(chan string, 64),
		log:     log.With(logx.String("comp", "notify")),
	}, nil
}

// newWithBot exists for tests (offline bots).
func newWithBot(cfg Config, bot *tele.Bot, log logx.Logger) *Service {
	return &Service{
		cfg:     cfg,
		bot:     bot,
		limiter: rate.NewLimiter(rate.Inf, 1),
		queue:   make(chan string, 64),
		log:     log,
	}
}

// Run drains the queue until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.queue:
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			if _, err := s.bot.Send(tele.ChatID(s.cfg.ChatID), msg); err != nil {
				s.log.Warn("telegram send failed", logx.Err(err))
			}
		}
	}
}

// Flush waits (bounded) for queued notifications to be picked up by the
// worker. Best-effort only; used on shutdown so the final outcome isn't
// silently dropped.
func (s *Service) Flush(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for len(s.queue) > 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}

// Record queues a notification for the given outcome. Never blocks.
func (s *Service) Record(rec automation.Record) {
	if s.cfg.OnlyFailures && rec.Kind == automation.OutcomeSuccess {
		return
	}
	select {
	case s.queue <- formatRecord(rec):
	default:
		s.log.Warn("notify queue full, dropping message",
			logx.String("topic", rec.Topic))
	}
}

func formatRecord(rec automation.Record) string {
	var b strings.Builder
	switch rec.Kind {
	case automation.OutcomeSuccess:
		b.WriteString("✅ video generated")
	case automation.OutcomeTimeout:
		b.WriteString("⏱ generation timed out")
	default:
		b.WriteString("❌ generation failed")
	}
	fmt.Fprintf(&b, "\ntopic: %s", rec.Topic)
	fmt.Fprintf(&b, "\ntook: %s", rec.Duration.Round(time.Second))
	if rec.ArtifactRef != "" {
		fmt.Fprintf(&b, "\nartifact: %s", rec.ArtifactRef)
	}
	if rec.Cause != automation.CauseNone {
		fmt.Fprintf(&b, "\ncause: %s", rec.Cause)
	}
	if rec.Detail != "" {
		fmt.Fprintf(&b, "\ndetail: %s", truncate(rec.Detail, 500))
	}
	if rec.UploadRequested && rec.UploadFailed {
		b.WriteString("\nupload: FAILED")
	}
	return b.String()
}

func truncate(s string, maxN int) string {
	if len(s) <= maxN {
		return s
	}
	return s[:maxN-3] + "..."
}
