package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	logx "vidforge/pkg/logx"
)

var (
	// ErrUnreachable means the request never produced an HTTP response
	// (connection refused, DNS failure, reset, ...).
	ErrUnreachable = errors.New("generation service unreachable")

	// ErrService means the service answered but reported or implied a
	// failure (non-2xx status, malformed body, or status != "success").
	ErrService = errors.New("generation service reported failure")
)

// Client issues generation requests against the backend's /api/generate
// endpoint. One call, one video; polling and composition are the backend's
// problem.
type Client struct {
	http   *http.Client
	url    string
	params Parameters
	log    logx.Logger
}

func NewClient(url string, params Parameters, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		// No client-level timeout: the per-job deadline comes from the
		// caller's context so cancellation stays in the scheduler's hands.
		http:   &http.Client{},
		url:    url,
		params: params,
		log:    log,
	}
}

// Generate sends one synchronous generation request for topic and waits for
// the backend to finish the full generate-and-optionally-upload cycle.
//
// Timeout/cancellation errors from ctx are returned unwrapped-classifiable:
// errors.Is(err, context.DeadlineExceeded) holds when the deadline hit.
func (c *Client) Generate(ctx context.Context, topic string) (*Result, error) {
	body, err := json.Marshal(generateRequest{VideoSubject: topic, Parameters: c.params})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("generation request", logx.String("topic", topic), logx.String("url", c.url))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Deadline or cancellation, not a transport verdict.
			return nil, fmt.Errorf("generate %q: %w", topic, err)
		}
		return nil, fmt.Errorf("generate %q: %w: %v", topic, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generate %q: read response: %w", topic, err)
		}
		return nil, fmt.Errorf("generate %q: read response: %w: %v", topic, ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generate %q: %w: status %d: %s",
			topic, ErrService, resp.StatusCode, truncateBody(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("generate %q: %w: malformed response: %v", topic, ErrService, err)
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("generate %q: %w: %s", topic, ErrService, out.Message)
	}

	c.log.Debug("generation response",
		logx.String("topic", topic),
		logx.String("artifact", out.Data),
		logx.Duration("took", time.Since(start)),
	)
	return &Result{ArtifactRef: out.Data, Message: out.Message, UploadError: out.UploadError}, nil
}

func truncateBody(b []byte) string {
	const maxN = 512
	if len(b) <= maxN {
		return string(b)
	}
	return string(b[:maxN]) + "..."
}
