package relay

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/nerrad567/metric-relay/internal/infrastructure/config"
	"github.com/nerrad567/metric-relay/internal/infrastructure/logging"
	"github.com/nerrad567/metric-relay/internal/infrastructure/mqtt"
	"github.com/nerrad567/metric-relay/internal/lineprotocol"
)

// Writer queues a line-protocol record for a target database.
// Satisfied by *influxdb.Client.
type Writer interface {
	WriteRecord(record string, database string) error
}

// Subscriber registers MQTT message handlers.
// Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Deps contains the dependencies for creating a Relay.
type Deps struct {
	Config *config.Config
	Logger *logging.Logger

	// MQTT delivers route messages. Required.
	MQTT Subscriber

	// Writer receives encoded records. Nil runs the relay in dry-run
	// mode: records are encoded and logged but not written.
	Writer Writer
}

// Relay is the ingest pipeline: it subscribes to each configured route,
// encodes incoming payloads to line protocol, and hands the records to
// the writer.
type Relay struct {
	cfg     *config.Config
	logger  *logging.Logger
	mqtt    Subscriber
	writer  Writer
	encoder *lineprotocol.Encoder

	// stats is keyed by route name and fixed at construction, so
	// handlers read it without locking.
	stats map[string]*routeStats
}

// routeStats holds per-route message counters.
type routeStats struct {
	topic        string
	received     atomic.Uint64
	encoded      atomic.Uint64
	encodeFailed atomic.Uint64
	writeFailed  atomic.Uint64
}

// RouteStats is a point-in-time snapshot of one route's counters.
type RouteStats struct {
	Route        string `json:"route"`
	Topic        string `json:"topic"`
	Received     uint64 `json:"received"`
	Encoded      uint64 `json:"encoded"`
	EncodeFailed uint64 `json:"encode_failed"`
	WriteFailed  uint64 `json:"write_failed"`
}

// New creates a Relay from its dependencies.
//
// Returns ErrMissingDependency if Config, Logger, or MQTT is nil. A nil
// Writer is accepted and enables dry-run mode.
func New(deps Deps) (*Relay, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("%w: config", ErrMissingDependency)
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("%w: logger", ErrMissingDependency)
	}
	if deps.MQTT == nil {
		return nil, fmt.Errorf("%w: mqtt", ErrMissingDependency)
	}

	r := &Relay{
		cfg:     deps.Config,
		logger:  deps.Logger.With("component", "relay"),
		mqtt:    deps.MQTT,
		writer:  deps.Writer,
		encoder: lineprotocol.NewEncoder(),
		stats:   make(map[string]*routeStats),
	}
	r.encoder.SetLogger(r.logger)

	for _, route := range deps.Config.Routes {
		r.stats[routeName(route)] = &routeStats{topic: route.Topic}
	}

	return r, nil
}

// Start subscribes to every configured route.
//
// Subscriptions survive broker reconnects; Start is called once.
func (r *Relay) Start() error {
	qos := byte(r.cfg.MQTT.QoS)

	for _, route := range r.cfg.Routes {
		route := route
		name := routeName(route)

		err := r.mqtt.Subscribe(route.Topic, qos, func(topic string, payload []byte) error {
			return r.handleMessage(route, topic, payload, time.Now())
		})
		if err != nil {
			return fmt.Errorf("relay: subscribe route %q: %w", name, err)
		}

		r.logger.Info("route active",
			"route", name,
			"topic", route.Topic,
			"database", route.Database,
			"raw", route.Raw,
		)
	}

	return nil
}

// handleMessage encodes one message and queues it for writing.
//
// Encode and write failures are counted per route and returned; the
// MQTT client logs them without affecting the subscription.
func (r *Relay) handleMessage(route config.RouteConfig, topic string, payload []byte, receivedAt time.Time) error {
	name := routeName(route)
	stats, ok := r.stats[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	stats.received.Add(1)

	opts := lineprotocol.Options{
		DefaultMeasurement: route.Measurement,
		IntegerFields:      route.IntegerFields,
	}
	if route.StampReceived {
		opts.Time = receivedAt
	}

	record, err := r.encoder.Encode(r.classify(route, payload), opts)
	if err != nil {
		stats.encodeFailed.Add(1)
		return fmt.Errorf("relay: encode route %q: %w", name, err)
	}
	stats.encoded.Add(1)

	if r.writer == nil {
		r.logger.Debug("dry run, record not written",
			"route", name,
			"topic", topic,
			"record", record,
		)
		return nil
	}

	if err := r.writer.WriteRecord(record, route.Database); err != nil {
		stats.writeFailed.Add(1)
		return fmt.Errorf("relay: write route %q: %w", name, err)
	}

	return nil
}

// classify turns the raw MQTT payload into the encoder's input shape.
//
// Raw routes skip decoding entirely. Otherwise the payload is decoded
// as JSON; objects and strings pass through to the encoder, anything
// that fails to decode is treated as pre-built line protocol text.
func (r *Relay) classify(route config.RouteConfig, payload []byte) any {
	if route.Raw {
		return string(payload)
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return string(payload)
	}
	return decoded
}

// Stats returns a snapshot of all route counters, sorted by route name.
func (r *Relay) Stats() []RouteStats {
	snapshot := make([]RouteStats, 0, len(r.stats))
	for name, stats := range r.stats {
		snapshot = append(snapshot, RouteStats{
			Route:        name,
			Topic:        stats.topic,
			Received:     stats.received.Load(),
			Encoded:      stats.encoded.Load(),
			EncodeFailed: stats.encodeFailed.Load(),
			WriteFailed:  stats.writeFailed.Load(),
		})
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Route < snapshot[j].Route
	})
	return snapshot
}

// routeName returns the route's display name, defaulting to its topic.
func routeName(route config.RouteConfig) string {
	if route.Name != "" {
		return route.Name
	}
	return route.Topic
}
