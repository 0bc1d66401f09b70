package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daycast/backend/internal/authz"
	"github.com/daycast/backend/internal/models"
	"github.com/daycast/backend/internal/store"
)

// EventStore defines the persistence interface the lifecycle service
// consumes.
type EventStore interface {
	Insert(ctx context.Context, ev *models.Event) (*models.Event, error)
	FindMany(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]models.Event, error)
	FindOne(ctx context.Context, filter bson.M) (*models.Event, error)
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (*models.Event, error)
	DeleteOne(ctx context.Context, filter bson.M) error
}

// Service is the sole mutator of event records. Every operation is
// scoped to the calling identity through authz.OwnerScope; there is no
// path that fetches broadly and checks ownership afterwards.
//
// Concurrent updates to the same event race with last-write-wins
// semantics: the store's per-document atomicity is the only guard, and
// no revision token is maintained.
type Service struct {
	store EventStore
	now   func() time.Time
}

func NewService(st EventStore) *Service {
	return &Service{store: st, now: time.Now}
}

// NewServiceWithClock injects a clock for tests.
func NewServiceWithClock(st EventStore, now func() time.Time) *Service {
	return &Service{store: st, now: now}
}

// idFilter builds the owner-scoped filter for a single event. An id
// that is not a valid object id cannot match anything, so it reports
// ErrNotFound rather than a validation failure.
func idFilter(ownerID, eventID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, ErrNotFound
	}
	return authz.OwnerScope{OwnerID: ownerID}.ScopeWith(bson.M{"_id": oid}), nil
}

func validateReminders(reminders []models.Reminder) error {
	for _, r := range reminders {
		if r.Time.IsZero() {
			return invalid("reminders", "reminder time is required")
		}
		if !models.ValidReminderType(r.Type) {
			return invalid("reminders", "reminder type must be email or push")
		}
	}
	return nil
}

func validateChecklist(items []models.ChecklistItem) error {
	for _, it := range items {
		if strings.TrimSpace(it.Item) == "" {
			return invalid("checklist", "checklist item text is required")
		}
	}
	return nil
}

// Create validates the input, stamps ownership and defaults, and
// persists a new event. End before start is accepted; the stored data
// is as permissive as the wire format.
func (s *Service) Create(ctx context.Context, ownerID string, in models.EventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	if in.Start == nil {
		return nil, invalid("start", "start time is required")
	}
	if in.End == nil {
		return nil, invalid("end", "end time is required")
	}

	category := in.Category
	if category == "" {
		category = models.CategoryPersonal
	} else if !models.ValidCategory(category) {
		return nil, invalid("category", "unknown category")
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	} else if !models.ValidStatus(status) {
		return nil, invalid("status", "unknown status")
	}

	if err := validateReminders(in.Reminders); err != nil {
		return nil, err
	}
	if err := validateChecklist(in.Checklist); err != nil {
		return nil, err
	}

	now := s.now()
	ev := &models.Event{
		Title:             title,
		Description:       strings.TrimSpace(in.Description),
		Start:             *in.Start,
		End:               *in.End,
		Location:          strings.TrimSpace(in.Location),
		Category:          category,
		Tags:              in.Tags,
		CreatedBy:         ownerID,
		Attendees:         []models.Attendee{},
		Reminders:         in.Reminders,
		Checklist:         in.Checklist,
		IsRecurring:       in.IsRecurring,
		RecurrencePattern: in.RecurrencePattern,
		Status:            status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if ev.Reminders == nil {
		ev.Reminders = []models.Reminder{}
	}
	if ev.Checklist == nil {
		ev.Checklist = []models.ChecklistItem{}
	}

	saved, err := s.store.Insert(ctx, ev)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return saved, nil
}

// List returns all of the owner's events, start-ascending.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Event, error) {
	scope := authz.OwnerScope{OwnerID: ownerID}
	evs, err := s.store.FindMany(ctx, scope.Scope(), bson.D{{Key: "start", Value: 1}}, 0)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	if evs == nil {
		evs = []models.Event{}
	}
	return evs, nil
}

// Get returns a single owned event.
func (s *Service) Get(ctx context.Context, ownerID, eventID string) (*models.Event, error) {
	filter, err := idFilter(ownerID, eventID)
	if err != nil {
		return nil, err
	}
	ev, err := s.store.FindOne(ctx, filter)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return ev, nil
}

// Update applies a partial field merge to an owned event. Enum fields
// are re-validated; updatedAt is refreshed on every successful call.
// Any status from the enum may be set at any time: completed and
// cancelled are not terminal.
func (s *Service) Update(ctx context.Context, ownerID, eventID string, patch models.EventPatch) (*models.Event, error) {
	filter, err := idFilter(ownerID, eventID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title", "title cannot be empty")
		}
		set["title"] = title
	}
	if patch.Description != nil {
		set["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Start != nil {
		set["start"] = *patch.Start
	}
	if patch.End != nil {
		set["end"] = *patch.End
	}
	if patch.Location != nil {
		set["location"] = strings.TrimSpace(*patch.Location)
	}
	if patch.Category != nil {
		if !models.ValidCategory(*patch.Category) {
			return nil, invalid("category", "unknown category")
		}
		set["category"] = *patch.Category
	}
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return nil, invalid("status", "unknown status")
		}
		set["status"] = *patch.Status
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	if patch.Reminders != nil {
		if err := validateReminders(patch.Reminders); err != nil {
			return nil, err
		}
		set["reminders"] = patch.Reminders
	}
	if patch.Checklist != nil {
		if err := validateChecklist(patch.Checklist); err != nil {
			return nil, err
		}
		set["checklist"] = patch.Checklist
	}
	if patch.IsRecurring != nil {
		set["isRecurring"] = *patch.IsRecurring
	}
	if patch.RecurrencePattern != nil {
		set["recurrencePattern"] = patch.RecurrencePattern
	}
	set["updatedAt"] = s.now()

	ev, err := s.store.UpdateOne(ctx, filter, set)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return ev, nil
}

// Delete removes an owned event.
func (s *Service) Delete(ctx context.Context, ownerID, eventID string) error {
	filter, err := idFilter(ownerID, eventID)
	if err != nil {
		return err
	}
	err = s.store.DeleteOne(ctx, filter)
	if errors.Is(err, store.ErrNoDocument) {
		return ErrNotFound
	}
	if err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// AddAttendee appends a pending attendee to an owned event and returns
// the updated record. The attendee id is the handle for later status
// updates. Two concurrent appends on the same event can interleave;
// there is no lost-update guard beyond per-document atomicity.
func (s *Service) AddAttendee(ctx context.Context, ownerID, eventID, attendeeUserID string) (*models.Event, error) {
	if strings.TrimSpace(attendeeUserID) == "" {
		return nil, invalid("userId", "attendee user id is required")
	}
	filter, err := idFilter(ownerID, eventID)
	if err != nil {
		return nil, err
	}

	ev, err := s.store.FindOne(ctx, filter)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	attendees := append(ev.Attendees, models.Attendee{
		ID:     uuid.New().String(),
		User:   attendeeUserID,
		Status: models.AttendeePending,
	})

	updated, err := s.store.UpdateOne(ctx, filter, bson.M{
		"attendees": attendees,
		"updatedAt": s.now(),
	})
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return updated, nil
}

// UpdateAttendeeStatus sets the response status of one attendee,
// located by its id within the owned event's list. An unknown attendee
// id reports ErrNotFound.
func (s *Service) UpdateAttendeeStatus(ctx context.Context, ownerID, eventID, attendeeID, status string) (*models.Event, error) {
	if !models.ValidAttendeeStatus(status) {
		return nil, invalid("status", "status must be pending, accepted, or declined")
	}
	filter, err := idFilter(ownerID, eventID)
	if err != nil {
		return nil, err
	}

	ev, err := s.store.FindOne(ctx, filter)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	found := false
	for i := range ev.Attendees {
		if ev.Attendees[i].ID == attendeeID {
			ev.Attendees[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	updated, err := s.store.UpdateOne(ctx, filter, bson.M{
		"attendees": ev.Attendees,
		"updatedAt": s.now(),
	})
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return updated, nil
}
