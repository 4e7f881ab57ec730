package twitter

import (
	"context"

	"birdsweep/internal/sweep"
)

// Executor adapts the API client to the scheduler's executor contract.
type Executor struct {
	client *Client
	userID string
}

func NewExecutor(client *Client, userID string) *Executor {
	return &Executor{client: client, userID: userID}
}

func (e *Executor) Perform(ctx context.Context, item sweep.Item) sweep.Outcome {
	if item.Kind == sweep.KindLike {
		return e.client.Unlike(ctx, e.userID, item.ID)
	}
	return e.client.DeleteTweet(ctx, item.ID)
}
