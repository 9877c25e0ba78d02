// Package report renders scheduler outcome records through the logging
// stack. Every iteration produces exactly one line regardless of outcome,
// so the log doubles as a complete audit trail of scheduling decisions.
package report

import (
	"vidforge/internal/automation"
	logx "vidforge/pkg/logx"
)

// LogRecorder writes one structured log line per outcome record.
type LogRecorder struct {
	log logx.Logger
}

func NewLogRecorder(log logx.Logger) *LogRecorder {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &LogRecorder{log: log.With(logx.String("comp", "report"))}
}

func (r *LogRecorder) Record(rec automation.Record) {
	fields := []logx.Field{
		logx.Time("started_at", rec.Timestamp),
		logx.String("job_id", rec.JobID.String()),
		logx.String("topic", rec.Topic),
		logx.String("outcome", string(rec.Kind)),
		logx.Int64("duration_ms", rec.Duration.Milliseconds()),
	}
	if rec.Cause != automation.CauseNone {
		fields = append(fields, logx.String("cause", string(rec.Cause)))
	}
	if rec.ArtifactRef != "" {
		fields = append(fields, logx.String("artifact", rec.ArtifactRef))
	}
	if rec.Detail != "" {
		fields = append(fields, logx.String("detail", rec.Detail))
	}
	if rec.UploadRequested {
		fields = append(fields, logx.Bool("upload_requested", true))
		fields = append(fields, logx.Bool("upload_failed", rec.UploadFailed))
	}

	switch rec.Kind {
	case automation.OutcomeSuccess:
		r.log.Info("job completed", fields...)
	case automation.OutcomeTimeout:
		r.log.Error("job timed out", fields...)
	default:
		r.log.Error("job failed", fields...)
	}
}
