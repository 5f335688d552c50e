package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// ErrUnavailable wraps every transport-level failure (unreachable store,
// non-2xx, malformed body, breaker open) so callers can treat them uniformly
// as "offline this tick".
var ErrUnavailable = errors.New("remote store unavailable")

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

// AIState is the advisory blob the remote store keeps alongside sensor data.
type AIState struct {
	Recommendation string `json:"recommendation"`
}

// Snapshot is the root document of the remote store. Sensors and controls
// stay loosely typed here; the mapper owns the coercion rules.
type Snapshot struct {
	Sensors  map[string]any `json:"sensors"`
	Controls map[string]any `json:"controls"`
	AI       AIState        `json:"ai"`
}

// Client talks to the realtime store over its REST surface. All calls run
// through a circuit breaker so a flapping store stops consuming the poll
// budget while open.
type Client struct {
	base    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures < 1 {
		failures = 5
	}
	openFor := cfg.BreakerOpenFor
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "remote-store",
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
	})
	return &Client{
		base:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb,
	}
}

// Fetch reads the whole document: GET <base>/.json.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var snap Snapshot
		if err := c.getJSON(ctx, c.base+"/.json", &snap); err != nil {
			return Snapshot{}, err
		}
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res.(Snapshot), nil
}

// PatchControls merges the given subset into the controls document.
func (c *Client) PatchControls(ctx context.Context, controls map[string]any) error {
	return c.writeControls(ctx, http.MethodPatch, controls)
}

// PutControls replaces the controls document wholesale.
func (c *Client) PutControls(ctx context.Context, controls map[string]any) error {
	return c.writeControls(ctx, http.MethodPut, controls)
}

// Probe verifies connectivity at startup, retrying with exponential backoff.
// A store that never answers is not fatal: the poll loop degrades to offline
// and keeps retrying on its own cadence.
func (c *Client) Probe(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(func() error {
		_, err := c.Fetch(ctx)
		return err
	}, backoff.WithContext(bo, ctx))
}

// BreakerState exposes the breaker for health reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) writeControls(ctx context.Context, method string, controls map[string]any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		body, err := json.Marshal(controls)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+"/controls.json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode >= 300 {
			return nil, fmt.Errorf("%s /controls.json -> %s", method, res.Status)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
