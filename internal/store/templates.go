package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// TemplateRecord is one named, timestamped JSON definition shared by the
// pose, sequence, and trajectory repositories below. Definition holds the
// encoded form of a pose.Definition, sequence.Template, or
// trajectory.Template — the store deals in opaque JSON text so it never
// needs to import the classification packages themselves.
type TemplateRecord struct {
	ID         string
	Name       string
	Definition string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// templateRepository is the shared CRUD implementation behind
// PoseRepository, SequenceRepository, and TrajectoryRepository, each of
// which only fixes the backing table name.
type templateRepository struct {
	db    *sql.DB
	table string
}

// PoseRepository persists pose.Registry definitions.
type PoseRepository struct{ templateRepository }

// SequenceRepository persists sequence.Detector templates.
type SequenceRepository struct{ templateRepository }

// TrajectoryRepository persists trajectory.Tracker templates.
type TrajectoryRepository struct{ templateRepository }

// Poses returns the pose definition repository for this store.
func (s *Store) Poses() *PoseRepository {
	return &PoseRepository{templateRepository{db: s.db, table: "pose_definitions"}}
}

// Sequences returns the sequence template repository for this store.
func (s *Store) Sequences() *SequenceRepository {
	return &SequenceRepository{templateRepository{db: s.db, table: "sequence_templates"}}
}

// Trajectories returns the trajectory template repository for this store.
func (s *Store) Trajectories() *TrajectoryRepository {
	return &TrajectoryRepository{templateRepository{db: s.db, table: "trajectory_templates"}}
}

// Create inserts a new template record.
func (r *templateRepository) Create(t *TemplateRecord) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO `+r.table+` (id, name, definition, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Definition, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// GetByID retrieves a template record by its ID.
func (r *templateRepository) GetByID(id string) (*TemplateRecord, error) {
	t := &TemplateRecord{}
	err := r.db.QueryRow(
		`SELECT id, name, definition, created_at, updated_at FROM `+r.table+` WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.Definition, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByName retrieves a template record by its unique name.
func (r *templateRepository) GetByName(name string) (*TemplateRecord, error) {
	t := &TemplateRecord{}
	err := r.db.QueryRow(
		`SELECT id, name, definition, created_at, updated_at FROM `+r.table+` WHERE name = ?`,
		name,
	).Scan(&t.ID, &t.Name, &t.Definition, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List retrieves every template record, most recently created first.
func (r *templateRepository) List() ([]*TemplateRecord, error) {
	rows, err := r.db.Query(`SELECT id, name, definition, created_at, updated_at FROM ` + r.table + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TemplateRecord
	for rows.Next() {
		t := &TemplateRecord{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Definition, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites an existing template record's name and definition.
func (r *templateRepository) Update(t *TemplateRecord) error {
	t.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE `+r.table+` SET name = ?, definition = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Definition, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template record by its ID.
func (r *templateRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM `+r.table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
