package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidforge/internal/app"
	"vidforge/internal/automation"
	logx "vidforge/pkg/logx"
)

// Exit codes are part of the contract: cron-style launchers key off them.
const (
	exitOK        = 0 // clean run, clean shutdown, or nothing to do
	exitJobFailed = 1 // one-shot job failed or timed out
	exitConfigErr = 2 // configuration problem, no job attempted
)

func main() {
	var (
		cfgPath  string
		daemon   bool
		interval float64
	)
	flag.StringVar(&cfgPath, "config", "./automation_config.yaml", "path to config yaml")
	flag.BoolVar(&daemon, "daemon", false, "run continuously instead of once")
	flag.Float64Var(&interval, "interval", 0, "override generation interval in hours")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(app.Options{
		ConfigPath:    cfgPath,
		Daemon:        daemon,
		IntervalHours: interval,
	})
	if err != nil {
		// Anything failing before the loop starts is a setup problem.
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(exitConfigErr)
	}
	err = a.Run(ctx)

	var code int
	switch {
	case err == nil:
		code = exitOK
	case errors.Is(err, automation.ErrDisabled):
		// Nothing to do is not a failure.
		code = exitOK
	case errors.Is(err, automation.ErrNoTopics):
		code = exitConfigErr
	case errors.Is(err, automation.ErrJobFailed):
		code = exitJobFailed
	default:
		a.Logger().Error("run failed", logx.Err(err))
		code = exitJobFailed
	}

	_ = a.Close()
	os.Exit(code)
}
