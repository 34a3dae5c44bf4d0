package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Pose definitions table - stores rule-based pose definitions as JSON
		`CREATE TABLE IF NOT EXISTS pose_definitions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			definition TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sequence templates table - stores ordered pose-transition templates as JSON
		`CREATE TABLE IF NOT EXISTS sequence_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			definition TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Trajectory templates table - stores DTW-matched path templates as JSON
		`CREATE TABLE IF NOT EXISTS trajectory_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			definition TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Actions table - binds a recognised event (by category + name) to a plugin action
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL CHECK(category IN ('gesture', 'sequence', 'trajectory', 'bimanual')),
			binding_name TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(category, binding_name)
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_actions_category_binding ON actions(category, binding_name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
