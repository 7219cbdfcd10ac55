// Package source fetches usage blocks from the ccusage CLI and watches the
// transcript directories it reads from.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// Sentinel errors for the failure modes callers handle differently. Fetch
// errors wrap one of these where the cause is known.
var (
	// ErrNotInstalled means neither ccusage nor the npx fallback could run.
	ErrNotInstalled = errors.New("ccusage is not installed")
	// ErrTimeout means the CLI did not answer within the configured timeout.
	ErrTimeout = errors.New("usage fetch timed out")
	// ErrMalformed means the CLI answered with undecodable output.
	ErrMalformed = errors.New("usage data is malformed")
)

const (
	binaryName     = "ccusage"
	npxPackage     = "ccusage@latest"
	defaultTimeout = 8 * time.Second

	// errorCooldown throttles retries after a failed fetch so a broken
	// installation does not spawn a subprocess every tick.
	errorCooldown = 30 * time.Second
)

var cliArgs = []string{"blocks", "--offline", "--json"}

type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client invokes the ccusage CLI and decodes its block report. Fetch is safe
// for concurrent use, though the tick loop is its only caller in practice.
type Client struct {
	lastFailure time.Time
	run         runnerFunc
	now         func() time.Time
	lastErr     error
	timeout     time.Duration
	cooldown    time.Duration
	mu          sync.Mutex
}

// NewClient returns a client that gives the CLI up to timeout per fetch.
// Non-positive timeouts fall back to the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		run:      runCommand,
		now:      time.Now,
		timeout:  timeout,
		cooldown: errorCooldown,
	}
}

// Fetch runs ccusage and returns the decoded snapshot. During the cooldown
// window after a failure it returns the previous error without spawning the
// CLI again.
func (c *Client) Fetch(ctx context.Context) (*models.Snapshot, error) {
	c.mu.Lock()
	if c.lastErr != nil && c.now().Sub(c.lastFailure) < c.cooldown {
		err := c.lastErr
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.run(ctx, binaryName, cliArgs...)
	if err != nil && errors.Is(err, exec.ErrNotFound) {
		logger.Debug("ccusage not on PATH, falling back to npx")
		out, err = c.run(ctx, "npx", append([]string{npxPackage}, cliArgs...)...)
	}
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			err = fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		case errors.Is(err, exec.ErrNotFound):
			err = fmt.Errorf("%w: install it with npm install -g ccusage", ErrNotInstalled)
		default:
			err = fmt.Errorf("ccusage failed: %w", err)
		}
		return nil, c.recordFailure(err)
	}

	snap, err := parseSnapshot(out, c.now())
	if err != nil {
		return nil, c.recordFailure(err)
	}

	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	return snap, nil
}

func (c *Client) recordFailure(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.lastFailure = c.now()
	c.mu.Unlock()
	return err
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// blockDTO mirrors one entry of the ccusage blocks report.
type blockDTO struct {
	ID            string `json:"id"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	ActualEndTime string `json:"actualEndTime"`
	IsActive      bool   `json:"isActive"`
	IsGap         bool   `json:"isGap"`
	TotalTokens   int    `json:"totalTokens"`
}

type blocksPayload struct {
	Blocks []blockDTO `json:"blocks"`
}

func parseSnapshot(data []byte, fetchedAt time.Time) (*models.Snapshot, error) {
	var p blocksPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	blocks := make([]models.UsageBlock, 0, len(p.Blocks))
	for _, d := range p.Blocks {
		b, err := d.toBlock()
		if err != nil {
			return nil, fmt.Errorf("%w: block %q: %v", ErrMalformed, d.ID, err)
		}
		blocks = append(blocks, b)
	}

	return &models.Snapshot{FetchedAt: fetchedAt, Blocks: blocks}, nil
}

func (d blockDTO) toBlock() (models.UsageBlock, error) {
	if d.ID == "" {
		return models.UsageBlock{}, errors.New("missing id")
	}
	start, err := time.Parse(time.RFC3339, d.StartTime)
	if err != nil {
		return models.UsageBlock{}, fmt.Errorf("bad startTime: %v", err)
	}

	b := models.UsageBlock{
		ID:         d.ID,
		StartTime:  start,
		IsActive:   d.IsActive,
		IsGap:      d.IsGap,
		TotalUnits: d.TotalTokens,
	}

	// Active blocks are open ended. Completed blocks prefer the actual end
	// over the scheduled window boundary.
	if !d.IsActive {
		raw := d.ActualEndTime
		if raw == "" {
			raw = d.EndTime
		}
		if raw != "" {
			end, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return models.UsageBlock{}, fmt.Errorf("bad endTime: %v", err)
			}
			b.EndTime = &end
		}
	}
	return b, nil
}
