package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateDeploymentsTable, downCreateDeploymentsTable)
}

func upCreateDeploymentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS deployments (
		id           VARCHAR(64)  NOT NULL PRIMARY KEY,
		project_id   VARCHAR(64)  NOT NULL,
		project_name VARCHAR(255) NOT NULL,
		url          VARCHAR(512) NOT NULL,
		asset_count  INT UNSIGNED NOT NULL DEFAULT 0,
		deployed_at  DATETIME     NOT NULL,
		INDEX idx_deployments_deployed_at (deployed_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`)
	return err
}

func downCreateDeploymentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS deployments;
	`)
	return err
}
