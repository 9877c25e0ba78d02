package automation

import "errors"

var (
	// ErrDisabled means the automation toggle is off. Not an error condition
	// operationally; callers should exit cleanly.
	ErrDisabled = errors.New("automation disabled")

	// ErrNoTopics means there is nothing to schedule. Fatal before the first
	// dispatch.
	ErrNoTopics = errors.New("no topics configured")

	// ErrJobFailed is returned from a one-shot run whose single job did not
	// succeed, so the process can exit non-zero.
	ErrJobFailed = errors.New("job did not succeed")
)
