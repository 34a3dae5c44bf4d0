package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Category identifies which outbound event stream an action binds to.
type Category string

const (
	CategoryGesture    Category = "gesture"
	CategorySequence   Category = "sequence"
	CategoryTrajectory Category = "trajectory"
	CategoryBimanual   Category = "bimanual"
)

// Action represents a binding from one recognised event (identified by its
// category and name, e.g. gesture "thumbs_up" or sequence "wave") to a
// plugin action to execute.
type Action struct {
	ID          string
	Category    Category
	BindingName string
	PluginName  string
	ActionName  string
	Config      json.RawMessage
	Enabled     bool
	CreatedAt   time.Time
}

// ActionRepository provides CRUD operations for actions.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// Create inserts a new action into the database.
func (r *ActionRepository) Create(a *Action) error {
	a.CreatedAt = time.Now()

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO actions (id, category, binding_name, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Category), a.BindingName, a.PluginName, a.ActionName, string(config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an action by its ID.
func (r *ActionRepository) GetByID(id string) (*Action, error) {
	a := &Action{}
	var category, config string
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, category, binding_name, plugin_name, action_name, config, enabled, created_at
		 FROM actions WHERE id = ?`,
		id,
	).Scan(&a.ID, &category, &a.BindingName, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.Category = Category(category)
	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

// GetByBinding retrieves the action bound to a (category, name) pair.
// Returns nil, nil if no action is bound — a silent skip, since most
// recognised events have no action attached.
func (r *ActionRepository) GetByBinding(category Category, name string) (*Action, error) {
	a := &Action{}
	var cat, config string
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, category, binding_name, plugin_name, action_name, config, enabled, created_at
		 FROM actions WHERE category = ? AND binding_name = ?`,
		string(category), name,
	).Scan(&a.ID, &cat, &a.BindingName, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	a.Category = Category(cat)
	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

// List retrieves all actions from the database.
func (r *ActionRepository) List() ([]*Action, error) {
	rows, err := r.db.Query(
		`SELECT id, category, binding_name, plugin_name, action_name, config, enabled, created_at
		 FROM actions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a := &Action{}
		var category, config string
		var enabled int

		err := rows.Scan(&a.ID, &category, &a.BindingName, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)
		if err != nil {
			return nil, err
		}

		a.Category = Category(category)
		a.Config = json.RawMessage(config)
		a.Enabled = enabled != 0
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return actions, nil
}

// Update updates an existing action in the database.
func (r *ActionRepository) Update(a *Action) error {
	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if a.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE actions SET category = ?, binding_name = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		string(a.Category), a.BindingName, a.PluginName, a.ActionName, string(config), enabled, a.ID,
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

// Delete removes an action from the database by its ID.
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = ?`, id)
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
