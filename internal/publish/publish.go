// Package publish makes a rendered project page reachable at a public URL.
package publish

import (
	"context"
	"strings"
)

type Publisher interface {
	Publish(ctx context.Context, projectID string, page []byte) (string, error)
}

// LocalPublisher serves published projects through the preview route.
type LocalPublisher struct {
	baseURL string
}

func NewLocalPublisher(baseURL string) *LocalPublisher {
	return &LocalPublisher{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *LocalPublisher) Publish(_ context.Context, projectID string, _ []byte) (string, error) {
	return p.baseURL + "/api/preview/" + projectID, nil
}
