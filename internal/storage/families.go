package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

// CreateFamily inserts the family and its first ADMIN membership in one
// transaction; either both rows land or neither does.
func (r *Repository) CreateFamily(ctx context.Context, f *core.Family) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO families (id, name, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.CreatedBy, fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("insert family: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.CreatedBy, core.RoleAdmin.String(), fmtTime(now))
	if err != nil {
		return fmt.Errorf("insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit family creation: %w", err)
	}
	return nil
}

func (r *Repository) GetFamily(ctx context.Context, id string) (*core.Family, error) {
	var f core.Family
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at, updated_at FROM families WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFoundOr(err, "get family")
	}
	f.CreatedAt = parseTime(createdAt)
	f.UpdatedAt = parseTime(updatedAt)
	return &f, nil
}

func (r *Repository) ListFamiliesForUser(ctx context.Context, userID string) ([]core.Family, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.id, f.name, f.created_by, f.created_at, f.updated_at
		 FROM families f
		 JOIN family_members m ON m.family_id = f.id
		 WHERE m.user_id = ?
		 ORDER BY f.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var families []core.Family
	for rows.Next() {
		var f core.Family
		var createdAt, updatedAt string
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		f.CreatedAt = parseTime(createdAt)
		f.UpdatedAt = parseTime(updatedAt)
		families = append(families, f)
	}
	return families, rows.Err()
}

func (r *Repository) UpdateFamilyName(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE families SET name = ?, updated_at = ? WHERE id = ?`,
		name, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update family: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteFamily(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM families WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) AddMember(ctx context.Context, familyID, userID string, role core.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		familyID, userID, role.String(), fmtTime(time.Now()))
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, familyID string) ([]core.FamilyMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.family_id, m.user_id, u.name, u.email, m.role, m.joined_at
		 FROM family_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.family_id = ?
		 ORDER BY m.joined_at`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []core.FamilyMember
	for rows.Next() {
		var m core.FamilyMember
		var role, joinedAt string
		if err := rows.Scan(&m.FamilyID, &m.UserID, &m.Name, &m.Email, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role, _ = core.ParseRole(role)
		m.JoinedAt = parseTime(joinedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMemberRole resolves the caller's role within a family. ErrNotFound means
// the user is not a member at all.
func (r *Repository) GetMemberRole(ctx context.Context, familyID, userID string) (core.Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID).Scan(&role)
	if err != nil {
		return 0, notFoundOr(err, "get member role")
	}
	return core.ParseRole(role)
}

func (r *Repository) UpdateMemberRole(ctx context.Context, familyID, userID string, role core.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE family_members SET role = ? WHERE family_id = ? AND user_id = ?`,
		role.String(), familyID, userID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) RemoveMember(ctx context.Context, familyID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE family_id = ? AND user_id = ?`, familyID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
