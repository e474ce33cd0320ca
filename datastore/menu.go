package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coreybb/menuorders/models"
)

const createMenuTable = `
	CREATE TABLE IF NOT EXISTS menu (
		id SERIAL PRIMARY KEY,
		item VARCHAR(255) NOT NULL,
		price INT NOT NULL
	)
`

// MenuRepository handles database operations for the menu table.
// Every method runs in its own transaction scope.
type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// EnsureSchema creates the menu table if it does not exist yet.
func (r *MenuRepository) EnsureSchema(ctx context.Context) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createMenuTable); err != nil {
			return fmt.Errorf("failed to create menu table: %w", err)
		}
		return nil
	})
}

// Create inserts a row and returns its assigned ID.
func (r *MenuRepository) Create(ctx context.Context, item string, price int) (int64, error) {
	query := `
		INSERT INTO menu (item, price)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query, item, price).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return id, nil
}

// List returns every row in insertion order.
func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	query := `SELECT id, item, price FROM menu ORDER BY id`

	var items []models.MenuItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		items, err = queryMenuItems(ctx, tx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// GetByID returns the row with the given ID. A missing row is reported as a
// wrapped sql.ErrNoRows.
func (r *MenuRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	query := `SELECT id, item, price FROM menu WHERE id = $1`

	var item models.MenuItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Item, &item.Price)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("menu item %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get menu item by ID: %w", err)
	}
	return &item, nil
}

// FindByName returns all rows whose item matches name exactly. An empty
// slice means nothing matched.
func (r *MenuRepository) FindByName(ctx context.Context, name string) ([]models.MenuItem, error) {
	query := `SELECT id, item, price FROM menu WHERE item = $1 ORDER BY id`

	var items []models.MenuItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		items, err = queryMenuItems(ctx, tx, query, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find menu items named %q: %w", name, err)
	}
	return items, nil
}

// DeleteByName removes every row whose item matches name and reports how
// many were removed.
func (r *MenuRepository) DeleteByName(ctx context.Context, name string) (int64, error) {
	query := `DELETE FROM menu WHERE item = $1`

	var removed int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, name)
		if err != nil {
			return err
		}
		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete menu items named %q: %w", name, err)
	}
	return removed, nil
}

func queryMenuItems(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]models.MenuItem, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Item, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu row: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menu rows: %w", err)
	}
	return items, nil
}
