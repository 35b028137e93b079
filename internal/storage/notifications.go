package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgety/internal/core"
)

func (r *Repository) CreateNotification(ctx context.Context, n *core.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var actorID, expenseID any
	if n.ActorID != "" {
		actorID = n.ActorID
	}
	if n.ExpenseID != "" {
		expenseID = n.ExpenseID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, family_id, type, message, actor_id, expense_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.FamilyID, n.Type, n.Message, actorID, expenseID, fmtTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *Repository) ListNotifications(ctx context.Context, familyID string, limit int) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, family_id, type, message, actor_id, expense_id, created_at
		 FROM notifications WHERE family_id = ? ORDER BY created_at DESC LIMIT ?`,
		familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []core.Notification
	for rows.Next() {
		var n core.Notification
		var actorID, expenseID sql.NullString
		var createdAt string
		if err := rows.Scan(&n.ID, &n.FamilyID, &n.Type, &n.Message, &actorID, &expenseID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ActorID = actorID.String
		n.ExpenseID = expenseID.String
		n.CreatedAt = parseTime(createdAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
