package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yahyabedirhan/tutorial-vite-deno/internal/model"
)

// DeploymentRepo persists deployment history rows.
type DeploymentRepo struct{ DB *sql.DB }

func NewDeploymentRepo(db *sql.DB) *DeploymentRepo { return &DeploymentRepo{DB: db} }

// Record inserts a deployment.  Redelivered events for an id that is already
// stored are ignored.
func (r *DeploymentRepo) Record(ctx context.Context, d model.Deployment) error {
	if d.ID == "" || d.ProjectID == "" {
		return ErrInvalidDeployment
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO deployments (id, project_id, project_name, url, asset_count, deployed_at)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE id=id`,
		d.ID, d.ProjectID, d.ProjectName, d.URL, d.AssetCount, d.DeployedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert deployment %s: %w", d.ID, err)
	}
	return nil
}

// ListRecent returns up to limit deployments, newest first.
func (r *DeploymentRepo) ListRecent(ctx context.Context, limit int) ([]model.Deployment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, project_id, project_name, url, asset_count, deployed_at
		 FROM deployments ORDER BY deployed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Deployment
	for rows.Next() {
		var d model.Deployment
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.ProjectName, &d.URL, &d.AssetCount, &d.DeployedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
