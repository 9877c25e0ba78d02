package automation

import (
	"context"
	"errors"
	"time"

	"vidforge/internal/generator"
	logx "vidforge/pkg/logx"
)

// Client is the narrow slice of the generation client the dispatcher needs.
type Client interface {
	Generate(ctx context.Context, topic string) (*generator.Result, error)
}

// Dispatcher performs exactly one generation request per job and classifies
// the result. It never retries; retry policy, if anyone ever wants one,
// belongs to the scheduler.
type Dispatcher struct {
	client          Client
	timeout         time.Duration
	uploadRequested bool
	log             logx.Logger
}

// DefaultJobTimeout bounds one generate-and-upload cycle. Video generation
// is slow; an hour matches the backend's own worst case.
const DefaultJobTimeout = time.Hour

func NewDispatcher(client Client, timeout time.Duration, uploadRequested bool, log logx.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{client: client, timeout: timeout, uploadRequested: uploadRequested, log: log}
}

// Run dispatches job and waits at most the configured timeout. On timeout
// the wait is abandoned; nothing cancels work already running on the remote
// side beyond the dropped connection.
func (d *Dispatcher) Run(ctx context.Context, job Job) Outcome {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.log.Info("dispatching job",
		logx.String("job_id", job.ID.String()),
		logx.String("topic", job.Topic),
		logx.Duration("timeout", d.timeout),
	)

	res, err := d.client.Generate(runCtx, job.Topic)
	if err != nil {
		return d.classify(err)
	}

	return Outcome{
		Kind:            OutcomeSuccess,
		ArtifactRef:     res.ArtifactRef,
		UploadRequested: d.uploadRequested,
		UploadFailed:    res.UploadError != "",
	}
}

func (d *Dispatcher) classify(err error) Outcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Outcome{Kind: OutcomeTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		// Stop signal arrived mid-dispatch; still reported as this
		// iteration's outcome before the loop exits.
		return Outcome{Kind: OutcomeFailure, Cause: CauseCanceled, Err: err}
	case errors.Is(err, generator.ErrUnreachable):
		return Outcome{Kind: OutcomeFailure, Cause: CauseUnreachable, Err: err}
	default:
		return Outcome{Kind: OutcomeFailure, Cause: CauseService, Err: err}
	}
}
