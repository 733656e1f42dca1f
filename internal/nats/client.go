// Package nats mirrors every emitted datagram to a JetStream subject, so
// downstream pipeline tools can consume the replayed feed without listening
// on the UDP ports.
package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/twinfan/sendtraffic/internal/types"
)

const (
	SubjectReplaySent = "replay.sent"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "REPLAY_SENT",
		Subjects: []string{SubjectReplaySent},
		Storage:  nats.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishReplayedRecord publishes one emitted record to NATS
func (c *Client) PublishReplayedRecord(rec *types.ReplayedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = c.js.Publish(SubjectReplaySent, data)
	if err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}

	return nil
}

// SubscribeReplaySent subscribes to the mirrored feed
func (c *Client) SubscribeReplaySent(handler func(*types.ReplayedRecord)) error {
	_, err := c.js.Subscribe(SubjectReplaySent, func(msg *nats.Msg) {
		var rec types.ReplayedRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			fmt.Printf("Error unmarshaling record: %v\n", err)
			return
		}
		handler(&rec)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
