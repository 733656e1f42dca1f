// Package redis caches the last emitted position per replayed aircraft, so
// the state of a running replay can be inspected from outside the process.
// Entries expire on their own; the replay itself keeps no cross-run state.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/twinfan/sendtraffic/internal/types"
)

// stateTTL bounds how long a replayed aircraft stays visible after its last
// position went out.
const stateTTL = time.Hour

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client manages Redis connections and operations
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// StoreAircraftState stores the latest replayed aircraft state in Redis
func (c *Client) StoreAircraftState(ctx context.Context, state *types.AircraftState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal aircraft state: %w", err)
	}

	key := fmt.Sprintf("replay:aircraft:%s", state.HexIdent)
	return c.client.Set(ctx, key, data, stateTTL).Err()
}

// GetAircraftState retrieves the latest replayed aircraft state from Redis
func (c *Client) GetAircraftState(ctx context.Context, hexIdent string) (*types.AircraftState, error) {
	key := fmt.Sprintf("replay:aircraft:%s", hexIdent)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Data not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aircraft state: %w", err)
	}

	var state types.AircraftState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal aircraft state: %w", err)
	}
	return &state, nil
}

// DeleteAircraftState removes aircraft state from Redis
func (c *Client) DeleteAircraftState(ctx context.Context, hexIdent string) error {
	key := fmt.Sprintf("replay:aircraft:%s", hexIdent)
	return c.client.Del(ctx, key).Err()
}
