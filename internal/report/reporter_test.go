package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"vidforge/internal/automation"
	logx "vidforge/pkg/logx"
)

func TestRecordWritesOneAuditLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automation.log")
	log, closer := logx.New(logx.Config{
		Level:   "info",
		Console: false,
		File:    logx.FileConfig{Enabled: true, Path: path},
	})
	rec := NewLogRecorder(log)

	rec.Record(automation.Record{
		Timestamp:   time.Now(),
		JobID:       uuid.New(),
		Topic:       "volcano facts",
		Kind:        automation.OutcomeSuccess,
		Duration:    42 * time.Second,
		ArtifactRef: "/videos/volcano.mp4",
	})
	rec.Record(automation.Record{
		Timestamp: time.Now(),
		JobID:     uuid.New(),
		Topic:     "volcano facts",
		Kind:      automation.OutcomeFailure,
		Cause:     automation.CauseUnreachable,
		Duration:  time.Second,
		Detail:    "connection refused",
	})
	if err := closer.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), b)
	}
	if !strings.Contains(lines[0], "job completed") || !strings.Contains(lines[0], "/videos/volcano.mp4") {
		t.Fatalf("success line missing fields: %s", lines[0])
	}
	if !strings.Contains(lines[1], "job failed") || !strings.Contains(lines[1], "unreachable") {
		t.Fatalf("failure line missing fields: %s", lines[1])
	}
	for _, line := range lines {
		if !strings.Contains(line, "duration_ms") || !strings.Contains(line, "volcano facts") {
			t.Fatalf("line missing audit fields: %s", line)
		}
	}
}
