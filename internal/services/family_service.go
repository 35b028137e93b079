package services

import (
	"context"
	"log/slog"
	"time"

	"budgety/internal/amqp"
	"budgety/internal/core"
	"budgety/internal/storage"
)

// FamilyService handles family lifecycle and membership. Creation is the one
// transactional operation in the system: the family row and its creator's
// ADMIN membership land together or not at all.
type FamilyService struct {
	store  *storage.Repository
	events EventPublisher
}

func NewFamilyService(store *storage.Repository, events EventPublisher) *FamilyService {
	return &FamilyService{store: store, events: events}
}

func (s *FamilyService) Create(ctx context.Context, f *core.Family) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return s.store.CreateFamily(ctx, f)
}

// AddMemberByEmail adds an existing user to the family. An unknown email
// surfaces as not-found; the caller decides how much of that to reveal.
func (s *FamilyService) AddMemberByEmail(ctx context.Context, familyID, email string, role core.Role, actorID string) (*core.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddMember(ctx, familyID, user.ID, role); err != nil {
		return nil, err
	}

	if s.events != nil {
		event := &amqp.Event{
			Type:        amqp.EventMemberAdded,
			FamilyID:    familyID,
			ActorID:     actorID,
			Description: user.Name,
			OccurredAt:  time.Now(),
		}
		if err := s.events.PublishEvent(ctx, event); err != nil {
			// Notifications are best-effort; membership already changed.
			logPublishFailure(ctx, event, err)
		}
	}
	return user, nil
}

func logPublishFailure(ctx context.Context, event *amqp.Event, err error) {
	slog.ErrorContext(ctx, "Failed to publish notification event",
		"type", event.Type,
		"family_id", event.FamilyID,
		"error", err)
}
