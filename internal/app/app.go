// Package app wires configuration, logging, notification, and the
// scheduling core into a runnable process.
package app

import (
	"context"
	"io"
	"strings"
	"time"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"vidforge/internal/automation"
	"vidforge/internal/config"
	"vidforge/internal/generator"
	"vidforge/internal/notify"
	"vidforge/internal/report"
	"vidforge/internal/runtime/supervisor"
	logx "vidforge/pkg/logx"
)

type Options struct {
	ConfigPath string
	Daemon     bool

	// IntervalHours, when > 0, overrides both the configured interval and
	// any cron schedule (mirrors the -interval flag).
	IntervalHours float64
}

type App struct {
	opts Options
	cfg  *config.Config

	log      logx.Logger
	logClose io.Closer

	sched *automation.Scheduler
	notif *notify.Service
}

func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.IntervalHours > 0 {
		cfg.GenerationIntervalHours = opts.IntervalHours
		cfg.Schedule = ""
	}

	log, logClose := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	timeout, err := cfg.JobTimeout(automation.DefaultJobTimeout)
	if err != nil {
		return nil, err
	}

	mode, err := automation.ParseSelectionMode(cfg.TopicSelectionMode)
	if err != nil {
		return nil, err
	}

	var schedule cron.Schedule
	if s := strings.TrimSpace(cfg.Schedule); s != "" {
		schedule, err = config.ParseSchedule(s)
		if err != nil {
			return nil, err
		}
	}

	client := generator.NewClient(cfg.API.URL, generatorParams(cfg.VideoSettings),
		log.With(logx.String("comp", "generator")))

	disp := automation.NewDispatcher(client, timeout,
		cfg.VideoSettings.AutomateYoutubeUpload,
		log.With(logx.String("comp", "dispatch")))

	recorders := automation.MultiRecorder{report.NewLogRecorder(log)}

	var notif *notify.Service
	if cfg.Notify.Telegram.Enabled {
		notif, err = notify.New(notify.Config{
			Token:        cfg.Notify.Telegram.Token,
			ChatID:       cfg.Notify.Telegram.ChatID,
			RatePerSec:   cfg.Notify.Telegram.RatePerSec,
			OnlyFailures: cfg.Notify.Telegram.OnlyFailures,
		}, log)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, notif)
	}

	sched := automation.NewScheduler(automation.Config{
		Enabled:  cfg.Enabled,
		OneShot:  !opts.Daemon,
		Interval: cfg.Interval(),
		Schedule: schedule,
		Topics:   cfg.VideoTopics,
		Mode:     mode,
	}, disp, recorders, log.With(logx.String("comp", "scheduler")))

	return &App{
		opts:     opts,
		cfg:      cfg,
		log:      log,
		logClose: logClose,
		sched:    sched,
		notif:    notif,
	}, nil
}

func (a *App) Logger() logx.Logger { return a.log }

// Run executes the scheduler to completion, managing the daemon-mode
// background workers (config watcher, notify sender, systemd keepalive)
// around it.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))

	if a.notif != nil {
		sup.Go("notify", a.notif.Run)
	}
	if a.opts.Daemon {
		sup.Go("config-watch", func(ctx context.Context) {
			config.Watch(ctx, a.opts.ConfigPath, a.log.With(logx.String("comp", "config")))
		})
		sup.Go("sd-watchdog", watchdogLoop)
		_, _ = sddaemon.SdNotify(false, sddaemon.SdNotifyReady)
	}

	err := a.sched.Run(ctx)

	if a.opts.Daemon {
		_, _ = sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)
	}
	if a.notif != nil {
		// Give the queue a moment to drain so the final outcome gets out.
		a.notif.Flush(3 * time.Second)
	}
	_ = sup.Stop(5 * time.Second)
	return err
}

func (a *App) Close() error {
	if a.logClose != nil {
		return a.logClose.Close()
	}
	return nil
}

// watchdogLoop pets the systemd watchdog at half the configured interval.
// No-op when WatchdogSec is unset or the process is not under systemd.
func watchdogLoop(ctx context.Context) {
	interval, err := sddaemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = sddaemon.SdNotify(false, sddaemon.SdNotifyWatchdog)
		}
	}
}

func generatorParams(vs config.VideoSettings) generator.Parameters {
	return generator.Parameters{
		AIModel:           vs.AIModel,
		Voice:             vs.Voice,
		ParagraphNumber:   vs.ParagraphNumber,
		AutomateUpload:    vs.AutomateYoutubeUpload,
		UseMusic:          vs.UseMusic,
		ZipURL:            vs.ZipURL,
		Threads:           vs.Threads,
		SubtitlesPosition: vs.SubtitlesPosition,
		CustomPrompt:      vs.CustomPrompt,
		SubtitlesColor:    vs.SubtitlesColor,
	}
}
