package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func stateKey(runID, phase string) string {
	return "run:" + runID + ":state:" + phase
}

// SetBoardState stores the phase's board snapshot JSON so restarts can replay
// the run without the game server.
func (c *Client) SetBoardState(ctx context.Context, runID, phase string, state json.RawMessage) error {
	compressed := zstdEncoder.EncodeAll([]byte(state), nil)
	if err := c.rdb.Set(ctx, stateKey(runID, phase), compressed, 0).Err(); err != nil {
		return fmt.Errorf("set board state: %w", err)
	}
	return nil
}

// GetBoardState retrieves a phase's board snapshot, or nil when absent.
func (c *Client) GetBoardState(ctx context.Context, runID, phase string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(runID, phase)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get board state: %w", err)
	}
	state, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress board state: %w", err)
	}
	return json.RawMessage(state), nil
}
