package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event categories and statuses. Stored as plain strings in Mongo;
// validated by the lifecycle service on write.
const (
	CategoryPersonal = "personal"
	CategoryWork     = "work"
	CategorySocial   = "social"
	CategoryOther    = "other"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	AttendeePending  = "pending"
	AttendeeAccepted = "accepted"
	AttendeeDeclined = "declined"

	ReminderEmail = "email"
	ReminderPush  = "push"
)

// ValidCategory reports whether c is one of the event categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategorySocial, CategoryOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the event statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ValidAttendeeStatus reports whether s is a valid attendee response.
func ValidAttendeeStatus(s string) bool {
	switch s {
	case AttendeePending, AttendeeAccepted, AttendeeDeclined:
		return true
	}
	return false
}

// ValidReminderType reports whether t is a supported reminder channel.
func ValidReminderType(t string) bool {
	return t == ReminderEmail || t == ReminderPush
}

// Attendee is an invited participant. Participation is recorded but
// confers no access to the event. The ID is assigned on insert and is
// the handle for targeted status updates.
type Attendee struct {
	ID     string `json:"id"     bson:"id"`
	User   string `json:"user"   bson:"user"`
	Status string `json:"status" bson:"status"`
}

// Reminder is a scheduled notification for an event.
type Reminder struct {
	Time time.Time `json:"time" bson:"time"`
	Type string    `json:"type" bson:"type"`
	Sent bool      `json:"sent" bson:"sent"`
}

// ChecklistItem is a single preparation task attached to an event.
type ChecklistItem struct {
	Item      string `json:"item"      bson:"item"`
	Completed bool   `json:"completed" bson:"completed"`
}

// RecurrencePattern describes how a recurring event repeats. The data is
// stored as-is; there is no expansion engine.
type RecurrencePattern struct {
	Frequency string     `json:"frequency,omitempty" bson:"frequency,omitempty"`
	Interval  int        `json:"interval,omitempty"  bson:"interval,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"   bson:"endDate,omitempty"`
}

// Event is a single calendar entry stored in MongoDB, owned by exactly
// one user via CreatedBy.
type Event struct {
	ID                primitive.ObjectID `json:"id"                          bson:"_id,omitempty"`
	Title             string             `json:"title"                       bson:"title"`
	Description       string             `json:"description,omitempty"       bson:"description,omitempty"`
	Start             time.Time          `json:"start"                       bson:"start"`
	End               time.Time          `json:"end"                         bson:"end"`
	Location          string             `json:"location,omitempty"          bson:"location,omitempty"`
	Category          string             `json:"category"                    bson:"category"`
	Tags              []string           `json:"tags,omitempty"              bson:"tags,omitempty"`
	CreatedBy         string             `json:"createdBy"                   bson:"createdBy"`
	Attendees         []Attendee         `json:"attendees"                   bson:"attendees"`
	Reminders         []Reminder         `json:"reminders"                   bson:"reminders"`
	Checklist         []ChecklistItem    `json:"checklist"                   bson:"checklist"`
	IsRecurring       bool               `json:"isRecurring"                 bson:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern,omitempty" bson:"recurrencePattern,omitempty"`
	Status            string             `json:"status"                      bson:"status"`
	CreatedAt         time.Time          `json:"createdAt"                   bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"                   bson:"updatedAt"`
}

// EventInput is the JSON body for creating an event.
type EventInput struct {
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Start             *time.Time         `json:"start"`
	End               *time.Time         `json:"end"`
	Location          string             `json:"location"`
	Category          string             `json:"category"`
	Tags              []string           `json:"tags"`
	Reminders         []Reminder         `json:"reminders"`
	Checklist         []ChecklistItem    `json:"checklist"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	Status            string             `json:"status"`
}

// EventPatch is the JSON body for a partial update. Nil fields are left
// untouched.
type EventPatch struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	Start             *time.Time         `json:"start"`
	End               *time.Time         `json:"end"`
	Location          *string            `json:"location"`
	Category          *string            `json:"category"`
	Tags              []string           `json:"tags"`
	Reminders         []Reminder         `json:"reminders"`
	Checklist         []ChecklistItem    `json:"checklist"`
	IsRecurring       *bool              `json:"isRecurring"`
	RecurrencePattern *RecurrencePattern `json:"recurrencePattern"`
	Status            *string            `json:"status"`
}

// EventPreview is the projection returned in the dashboard's next-events
// list.
type EventPreview struct {
	Title    string    `json:"title"              bson:"title"`
	Start    time.Time `json:"start"              bson:"start"`
	Location string    `json:"location,omitempty" bson:"location,omitempty"`
}
