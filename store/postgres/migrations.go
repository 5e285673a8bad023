package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Paywall store.
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
    rate       BIGINT NOT NULL DEFAULT 0,
    vault_id   TEXT NOT NULL DEFAULT '',
    metadata   JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    balance    BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    rate               BIGINT NOT NULL DEFAULT 0,
    deposit            BIGINT NOT NULL DEFAULT 0,
    start_ms           BIGINT NOT NULL DEFAULT 0,
    last_checkpoint_ms BIGINT NOT NULL DEFAULT 0,
    status             TEXT NOT NULL DEFAULT 'active',
    total_spent        BIGINT NOT NULL DEFAULT 0,
    total_streamed_ms  BIGINT NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    listing_fee BIGINT NOT NULL DEFAULT 0,
    balance     BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
