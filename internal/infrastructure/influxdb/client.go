package influxdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/metric-relay/internal/infrastructure/config"
)

// pingTimeout bounds the initial reachability check on Connect.
const pingTimeout = 5 * time.Second

// Client wraps influxdb-client-go with per-database write routing.
//
// Writes are buffered and batched by the underlying non-blocking write
// API; WriteRecord queues a line-protocol record and returns immediately.
// Asynchronous write failures surface through the SetOnError callback.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client influxdb2.Client
	cfg    config.InfluxDBConfig

	// writers holds one buffered write API per target database, created
	// lazily on first write.
	writers  map[string]api.WriteAPI
	writerMu sync.Mutex

	connected bool
	connMu    sync.RWMutex

	onError    func(database string, err error)
	callbackMu sync.RWMutex

	// drainCtx stops the error-channel drain goroutines on Close.
	drainCtx    context.Context
	drainCancel context.CancelFunc
	drainWg     sync.WaitGroup
}

// Connect creates an InfluxDB client and verifies the server is reachable.
//
// Returns ErrDisabled without contacting the server when the client is
// disabled in config, so callers can run the relay in dry-run mode.
//
// Parameters:
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for writes
//   - error: ErrDisabled, or ErrConnectionFailed if the ping fails
func Connect(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	opts := influxdb2.DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.SetBatchSize(uint(cfg.BatchSize))
	}
	if cfg.FlushInterval > 0 {
		opts.SetFlushInterval(uint(cfg.FlushInterval * 1000)) // seconds -> ms
	}

	underlying := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	ok, err := underlying.Ping(ctx)
	if err != nil {
		underlying.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if !ok {
		underlying.Close()
		return nil, fmt.Errorf("%w: server not ready", ErrConnectionFailed)
	}

	drainCtx, drainCancel := context.WithCancel(context.Background())
	c := &Client{
		client:      underlying,
		cfg:         cfg,
		writers:     make(map[string]api.WriteAPI),
		connected:   true,
		drainCtx:    drainCtx,
		drainCancel: drainCancel,
	}

	return c, nil
}

// WriteRecord queues a line-protocol record for writing to a database.
//
// An empty database routes to the configured default bucket. The record
// may contain multiple newline-separated lines; they are queued as one
// batch entry.
//
// The write is asynchronous: a nil return means the record was queued,
// not that the server accepted it. Server-side failures are reported
// through the SetOnError callback.
//
// Parameters:
//   - record: Line protocol text, without a trailing newline
//   - database: Target database (bucket), or "" for the default
//
// Returns:
//   - error: ErrNotConnected, or ErrWriteFailed for an empty record
func (c *Client) WriteRecord(record string, database string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if strings.TrimSpace(record) == "" {
		return fmt.Errorf("%w: empty record", ErrWriteFailed)
	}

	if database == "" {
		database = c.cfg.Bucket
	}

	c.writerFor(database).WriteRecord(record)
	return nil
}

// writerFor returns the buffered write API for a database, creating it
// and its error drain on first use.
func (c *Client) writerFor(database string) api.WriteAPI {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()

	if writer, ok := c.writers[database]; ok {
		return writer
	}

	writer := c.client.WriteAPI(c.cfg.Org, database)
	c.writers[database] = writer

	c.drainWg.Add(1)
	go c.drainErrors(database, writer.Errors())

	return writer
}

// drainErrors forwards asynchronous write failures to the error callback.
// The channel must be drained even without a callback, or the write API
// blocks once its error buffer fills.
func (c *Client) drainErrors(database string, errCh <-chan error) {
	defer c.drainWg.Done()
	for {
		select {
		case <-c.drainCtx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			c.callbackMu.RLock()
			callback := c.onError
			c.callbackMu.RUnlock()
			if callback != nil {
				callback(database, err)
			}
		}
	}
}

// Flush forces all buffered writes to the server immediately.
func (c *Client) Flush() {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	for _, writer := range c.writers {
		writer.Flush()
	}
}

// Close flushes buffered writes and releases all resources.
func (c *Client) Close() error {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	// Client.Close flushes and shuts down every write API, closing their
	// error channels, which ends the drain goroutines.
	c.client.Close()
	c.drainCancel()
	c.drainWg.Wait()

	return nil
}

// HealthCheck pings the InfluxDB server.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	ok, err := c.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	if !ok {
		return fmt.Errorf("influxdb health check: server not ready")
	}

	return nil
}

// IsConnected returns whether the client is open for writes.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// SetOnError sets a callback for asynchronous write failures.
//
// The callback receives the target database and the error from the
// server. It runs on the drain goroutine and must not block.
func (c *Client) SetOnError(callback func(database string, err error)) {
	c.callbackMu.Lock()
	c.onError = callback
	c.callbackMu.Unlock()
}
