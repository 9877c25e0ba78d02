// Package automation contains the scheduling core: topic selection, job
// dispatch against the generation service, and the run loop that ties them
// together.
//
// # Overview
//
// The scheduler owns process lifetime and timing. Exactly one job is ever in
// flight; a slow or stuck generation service can never cause overlapping
// dispatches. Topic rotation state is an explicit value threaded through the
// selector, never a package-level variable, and it lives only for the
// lifetime of one process: a restart starts rotation over from the first
// topic.
//
// # Modes
//
//   - One-shot: dispatch exactly one job, report it, stop. The job's outcome
//     becomes the process exit status so cron-style launchers can detect
//     failures.
//   - Daemon: loop until the context is cancelled. A failed or timed-out job
//     is reported and the loop proceeds to the next slot; only configuration
//     errors or a stop signal end the loop.
package automation
