package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, family_id, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.FamilyID, c.Name, fmtTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetCategory scopes the lookup to a family: a category id from another
// family is not found, not forbidden.
func (r *Repository) GetCategory(ctx context.Context, familyID, id string) (*core.Category, error) {
	var c core.Category
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, name, created_at FROM categories WHERE id = ? AND family_id = ?`,
		id, familyID).Scan(&c.ID, &c.FamilyID, &c.Name, &createdAt)
	if err != nil {
		return nil, notFoundOr(err, "get category")
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (r *Repository) ListCategories(ctx context.Context, familyID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, name, created_at FROM categories WHERE family_id = ? ORDER BY name`,
		familyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategoryName(ctx context.Context, familyID, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND family_id = ?`, name, id, familyID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteCategory(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}
