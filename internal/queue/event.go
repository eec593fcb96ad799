// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"fmt"
	"time"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

// DeploymentQueueName is the durable queue carrying DeploymentCreatedEvent.
const DeploymentQueueName = "deployment.created"

// DeploymentCreatedEvent is published by the deploy CLI after the hosting
// provider accepted a deployment.
type DeploymentCreatedEvent struct {
	DeploymentID string `json:"deployment_id"`
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	URL          string `json:"url"`
	AssetCount   int    `json:"asset_count"`
	DeployedAt   string `json:"deployed_at"` // RFC 3339
}

// Deployment converts the event into a history record.
func (ev DeploymentCreatedEvent) Deployment() (model.Deployment, error) {
	at, err := time.Parse(time.RFC3339, ev.DeployedAt)
	if err != nil {
		return model.Deployment{}, fmt.Errorf("deployed_at: %w", err)
	}
	return model.Deployment{
		ID:          ev.DeploymentID,
		ProjectID:   ev.ProjectID,
		ProjectName: ev.ProjectName,
		URL:         ev.URL,
		AssetCount:  ev.AssetCount,
		DeployedAt:  at,
	}, nil
}
