package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/valuation-engine/pkg/models"
	"github.com/redis/go-redis/v9"
)

// StreamPublisher publishes detected edge results to Redis Streams.
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		client: client,
	}
}

// PublishEdgeResult publishes a single edge result to the per-league
// edges.detected stream.
func (p *StreamPublisher) PublishEdgeResult(ctx context.Context, result models.EdgeResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal edge result: %w", err)
	}

	streamKey := fmt.Sprintf("edges.detected.%s", result.League)

	_, err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"edge": string(resultJSON),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", streamKey, err)
	}

	return nil
}

// PublishEdgeResults publishes multiple edge results
func (p *StreamPublisher) PublishEdgeResults(ctx context.Context, results []models.EdgeResult) error {
	if len(results) == 0 {
		return nil
	}

	for _, result := range results {
		if err := p.PublishEdgeResult(ctx, result); err != nil {
			return err
		}
	}

	return nil
}
