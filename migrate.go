package authform

import "context"

func runMigrations(ctx context.Context, exec Executor) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			first_name TEXT,
			last_name TEXT,
			address1 TEXT,
			city TEXT,
			state TEXT,
			postal_code TEXT,
			date_of_birth TEXT,
			ssn TEXT,
			status TEXT DEFAULT 'active',
			created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS user_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at INTEGER,
			ip TEXT,
			user_agent TEXT,
			created_at INTEGER,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS user_identities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_id TEXT NOT NULL,
			email TEXT,
			created_at INTEGER,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(provider, provider_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_expires ON user_sessions(expires_at)`,
		`CREATE TABLE IF NOT EXISTS user_oauth_states (
			state TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			expires_at INTEGER,
			created_at INTEGER
		)`,
	}

	for _, q := range queries {
		if err := exec.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
