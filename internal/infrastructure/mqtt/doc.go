// Package mqtt provides MQTT broker connectivity for Metric Relay.
//
// It wraps eclipse/paho.mqtt.golang with the relay's connection
// management patterns: Last Will and Testament for offline detection,
// retained online/offline status, auto-reconnect with automatic
// re-subscription, and panic-recovering message handlers.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("sensors/+/climate", 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Message handlers run in separate goroutines and must not block for
// extended periods.
//
// # Error Handling
//
// Operations return wrapped sentinel errors (ErrNotConnected,
// ErrSubscribeFailed, ...) checkable with errors.Is. Handler errors and
// panics are logged through the optional logger and never crash the
// client.
package mqtt
