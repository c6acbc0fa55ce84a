package mqtt

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/metric-relay/internal/infrastructure/config"
)

// Integration tests require a running MQTT broker (e.g. mosquitto on
// localhost:1883). They skip automatically when no broker is reachable.

const (
	testBrokerHost = "localhost"
	testBrokerPort = 1883
)

// brokerAvailable checks if an MQTT broker is reachable.
func brokerAvailable() bool {
	conn, err := net.DialTimeout("tcp",
		fmt.Sprintf("%s:%d", testBrokerHost, testBrokerPort), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func testConfig(clientID string) config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     testBrokerHost,
			Port:     testBrokerPort,
			ClientID: clientID,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// === Connection Tests ===

func TestConnectAndClose(t *testing.T) {
	if !brokerAvailable() {
		t.Skip("MQTT broker not available, skipping integration test")
	}

	client, err := Connect(testConfig("metric-relay-test-connect"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after successful Connect()")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestConnectRefused(t *testing.T) {
	cfg := testConfig("metric-relay-test-refused")
	cfg.Broker.Port = 1 // nothing listens here

	// Connect retries internally; this test only asserts it does not
	// succeed against a closed port within the timeout.
	if client, err := Connect(cfg); err == nil {
		client.Close()
		t.Fatal("Connect() succeeded against closed port")
	}
}

// === Publish / Subscribe Tests ===

func TestPublishSubscribeRoundTrip(t *testing.T) {
	if !brokerAvailable() {
		t.Skip("MQTT broker not available, skipping integration test")
	}

	client, err := Connect(testConfig("metric-relay-test-pubsub"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := "metricrelay/test/roundtrip"
	received := make(chan []byte, 1)

	err = client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		received <- payload
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if got := client.SubscriptionCount(); got != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", got)
	}

	if err := client.PublishString(topic, "hello", 1, false); err != nil {
		t.Fatalf("PublishString() error = %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != "hello" {
			t.Errorf("received %q, want %q", payload, "hello")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if got := client.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d after Unsubscribe, want 0", got)
	}
}

func TestHandlerPanicRecovered(t *testing.T) {
	if !brokerAvailable() {
		t.Skip("MQTT broker not available, skipping integration test")
	}

	client, err := Connect(testConfig("metric-relay-test-panic"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := "metricrelay/test/panic"
	var calls atomic.Int32

	err = client.Subscribe(topic, 1, func(_ string, _ []byte) error {
		calls.Add(1)
		panic("handler exploded")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// Both messages must be delivered; the first panic must not take
	// down the client.
	for i := 0; i < 2; i++ {
		if err := client.PublishString(topic, "boom", 1, false); err != nil {
			t.Fatalf("PublishString() error = %v", err)
		}
	}

	deadline := time.After(5 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("handler called %d times, want 2", calls.Load())
		case <-time.After(50 * time.Millisecond):
		}
	}

	if !client.IsConnected() {
		t.Error("client disconnected after handler panic")
	}
}

// === Validation Tests (no broker required) ===

func TestPublishValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("qos 3: error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("sensors/#/bad", 1, func(string, []byte) error { return nil }); err == nil {
		t.Error("invalid filter accepted")
	}
	if err := c.Subscribe("sensors/#", 3, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("qos 3: error = %v, want ErrInvalidQoS", err)
	}
}
