package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Paywall store (SQLite).
var Migrations = migrate.NewGroup("paywall")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_paywall_bindings",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_bindings (
    id         TEXT PRIMARY KEY,
    creator    TEXT NOT NULL DEFAULT '',
    rate       INTEGER NOT NULL DEFAULT 0,
    vault_id   TEXT NOT NULL DEFAULT '',
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_paywall_bindings_creator ON paywall_bindings (creator, created_at);
CREATE INDEX IF NOT EXISTS idx_paywall_bindings_vault ON paywall_bindings (vault_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_bindings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_vaults",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_vaults (
    id         TEXT PRIMARY KEY,
    creator    TEXT NOT NULL DEFAULT '',
    balance    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_paywall_vaults_creator ON paywall_vaults (creator);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_vaults`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_sessions",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_sessions (
    id                 TEXT PRIMARY KEY,
    content_id         TEXT NOT NULL DEFAULT '',
    vault_id           TEXT NOT NULL DEFAULT '',
    owner              TEXT NOT NULL DEFAULT '',
    rate               INTEGER NOT NULL DEFAULT 0,
    deposit            INTEGER NOT NULL DEFAULT 0,
    start_ms           INTEGER NOT NULL DEFAULT 0,
    last_checkpoint_ms INTEGER NOT NULL DEFAULT 0,
    status             TEXT NOT NULL DEFAULT 'active',
    total_spent        INTEGER NOT NULL DEFAULT 0,
    total_streamed_ms  INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_paywall_sessions_owner ON paywall_sessions (owner, created_at);
CREATE INDEX IF NOT EXISTS idx_paywall_sessions_status ON paywall_sessions (owner, status);
CREATE INDEX IF NOT EXISTS idx_paywall_sessions_content ON paywall_sessions (content_id);
CREATE INDEX IF NOT EXISTS idx_paywall_sessions_vault ON paywall_sessions (vault_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_sessions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paywall_platform",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paywall_platform (
    id          TEXT PRIMARY KEY,
    admin       TEXT NOT NULL DEFAULT '',
    listing_fee INTEGER NOT NULL DEFAULT 0,
    balance     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paywall_platform`)
				return err
			},
		},
	)
}
