package model

import "time"

// Deployment represents a row in the `deployments` table.  Each row records
// one successful upload made by the deploy CLI.
//
// Fields:
//  ID           – hosting provider deployment id (primary key).
//  ProjectID    – hosting provider project id.
//  ProjectName  – project name, part of the live URL.
//  URL          – generated live URL.
//  AssetCount   – number of files uploaded.
//  DeployedAt   – when the CLI finished the upload.
type Deployment struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	URL         string    `json:"url"`
	AssetCount  int       `json:"asset_count"`
	DeployedAt  time.Time `json:"deployed_at"`
}
