package automation

import (
	"time"

	"github.com/google/uuid"
)

// Job is one request to the generation service for a single topic. It is
// immutable once created and discarded after its outcome is recorded.
type Job struct {
	ID        uuid.UUID
	Topic     string
	StartedAt time.Time
}

// OutcomeKind classifies how a dispatch ended.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
	OutcomeTimeout OutcomeKind = "timeout"
)

// FailureCause distinguishes "couldn't reach the service" from "the service
// ran and reported an error". Operators react differently to the two.
type FailureCause string

const (
	CauseNone        FailureCause = ""
	CauseUnreachable FailureCause = "unreachable"
	CauseService     FailureCause = "service_error"
	CauseCanceled    FailureCause = "canceled"
)

// Outcome is the classified result of one dispatch.
type Outcome struct {
	Kind        OutcomeKind
	Cause       FailureCause
	ArtifactRef string
	Err         error

	// UploadRequested/UploadFailed describe the optional upload step the
	// generation service performs after a successful render. The upload is
	// the remote side's job; we only report what it told us.
	UploadRequested bool
	UploadFailed    bool
}

// Record is the one structured line the scheduler emits per iteration.
type Record struct {
	Timestamp       time.Time
	JobID           uuid.UUID
	Topic           string
	Kind            OutcomeKind
	Cause           FailureCause
	Duration        time.Duration
	ArtifactRef     string
	Detail          string
	UploadRequested bool
	UploadFailed    bool
}

// Recorder consumes one Record per iteration. Implementations must not
// block the scheduling loop for long; slow sinks should queue internally.
type Recorder interface {
	Record(rec Record)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(rec Record)

func (f RecorderFunc) Record(rec Record) { f(rec) }

// MultiRecorder fans a record out to several sinks in order.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(rec Record) {
	for _, r := range m {
		if r != nil {
			r.Record(rec)
		}
	}
}
