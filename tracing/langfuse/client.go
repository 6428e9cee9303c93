package langfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/tvme/intro-LangGraph/log"
)

// DefaultHost is the Langfuse cloud endpoint.
const DefaultHost = "https://cloud.langfuse.com"

// ErrMissingKeys is returned when either API key is empty.
var ErrMissingKeys = errors.New("langfuse public and secret keys are required")

// Options configures a Client.
type Options struct {
	PublicKey  string
	SecretKey  string
	Host       string
	HTTPClient *http.Client
	Logger     log.Logger
	// BatchSize triggers a flush once that many events are queued. Zero
	// means events are only sent by Flush.
	BatchSize int
}

// Event is one ingestion item.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Body      map[string]any `json:"body"`
}

type ingestionRequest struct {
	Batch []Event `json:"batch"`
}

type ingestionResponse struct {
	Errors []struct {
		ID      string `json:"id"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Client queues events and sends them to the ingestion API in batches.
type Client struct {
	host      string
	publicKey string
	secretKey string
	http      *http.Client
	logger    log.Logger
	batchSize int
	breaker   *gobreaker.CircuitBreaker

	mu     sync.Mutex
	queue  []Event
	closed bool
}

// NewClient validates opts and returns a client.
func NewClient(opts Options) (*Client, error) {
	if opts.PublicKey == "" || opts.SecretKey == "" {
		return nil, ErrMissingKeys
	}
	c := &Client{
		host:      strings.TrimRight(opts.Host, "/"),
		publicKey: opts.PublicKey,
		secretKey: opts.SecretKey,
		http:      opts.HTTPClient,
		logger:    opts.Logger,
		batchSize: opts.BatchSize,
	}
	if c.host == "" {
		c.host = DefaultHost
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "langfuse",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return c, nil
}

// Enqueue adds an event of type typ.
func (c *Client) Enqueue(ctx context.Context, typ string, body map[string]any) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Timestamp: timestamp(time.Now()),
		Body:      body,
	})
	full := c.batchSize > 0 && len(c.queue) >= c.batchSize
	c.mu.Unlock()

	if full {
		if err := c.Flush(ctx); err != nil {
			c.logger.Warn("langfuse flush: %v", err)
		}
	}
}

// Pending returns the number of queued events.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Flush sends every queued event. Events of a failed batch are dropped.
func (c *Client) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.queue
	c.queue = nil
	c.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("send %d events: %w", len(batch), err)
	}
	return nil
}

// Close flushes and stops accepting events.
func (c *Client) Close(ctx context.Context) error {
	err := c.Flush(ctx)
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return err
}

func (c *Client) send(ctx context.Context, batch []Event) error {
	payload, err := json.Marshal(ingestionRequest{Batch: batch})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusMultiStatus {
		return fmt.Errorf("ingestion returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result ingestionResponse
	if err := json.Unmarshal(body, &result); err == nil {
		for _, e := range result.Errors {
			c.logger.Warn("langfuse rejected event %s (%d): %s", e.ID, e.Status, e.Message)
		}
	}
	return nil
}

func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
