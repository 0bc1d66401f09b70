package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/daycast/backend/internal/models"
)

type fakeEventStore struct {
	events []models.Event
}

func (f *fakeEventStore) FindMany(_ context.Context, filter bson.M, _ bson.D, _ int64) ([]models.Event, error) {
	clause := filter["reminders"].(bson.M)["$elemMatch"].(bson.M)
	due := clause["time"].(bson.M)["$lte"].(time.Time)

	var out []models.Event
	for _, ev := range f.events {
		for _, r := range ev.Reminders {
			if !r.Sent && r.Type == models.ReminderEmail && !r.Time.After(due) {
				out = append(out, ev)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeEventStore) UpdateOne(_ context.Context, filter bson.M, set bson.M) (*models.Event, error) {
	id := filter["_id"].(primitive.ObjectID)
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Reminders = set["reminders"].([]models.Reminder)
			return &f.events[i], nil
		}
	}
	return nil, nil
}

type fakeUsers struct {
	user models.User
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u := f.user
	u.ID = id
	return &u, nil
}

type recordingSender struct {
	sent []string
}

func (r *recordingSender) SendReminder(ev *models.Event, _ *models.User) error {
	r.sent = append(r.sent, ev.Title)
	return nil
}

func reminderEvent(title string, start time.Time, reminders ...models.Reminder) models.Event {
	return models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Start:     start,
		CreatedBy: "u1",
		Reminders: reminders,
	}
}

func newTestDispatcher(st *fakeEventStore, users *fakeUsers, sender *recordingSender, now time.Time) *Dispatcher {
	d := NewDispatcher(st, users, sender, zap.NewNop().Sugar(), time.Minute)
	d.now = func() time.Time { return now }
	return d
}

func TestDispatchDueSendsAndMarks(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeEventStore{events: []models.Event{
		reminderEvent("soon", now.Add(2*time.Hour),
			models.Reminder{Time: now.Add(-time.Minute), Type: models.ReminderEmail}),
	}}
	users := &fakeUsers{user: models.User{Email: "o@example.com", Preferences: models.DefaultPreferences()}}
	sender := &recordingSender{}

	require.NoError(t, newTestDispatcher(st, users, sender, now).DispatchDue(context.Background()))

	assert.Equal(t, []string{"soon"}, sender.sent)
	assert.True(t, st.events[0].Reminders[0].Sent)
}

func TestDispatchSkipsFutureReminders(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeEventStore{events: []models.Event{
		reminderEvent("later", now.Add(2*time.Hour),
			models.Reminder{Time: now.Add(time.Hour), Type: models.ReminderEmail}),
	}}
	users := &fakeUsers{user: models.User{Preferences: models.DefaultPreferences()}}
	sender := &recordingSender{}

	require.NoError(t, newTestDispatcher(st, users, sender, now).DispatchDue(context.Background()))

	assert.Empty(t, sender.sent)
	assert.False(t, st.events[0].Reminders[0].Sent)
}

func TestDispatchSkipsPushReminders(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeEventStore{events: []models.Event{
		reminderEvent("push-only", now.Add(2*time.Hour),
			models.Reminder{Time: now.Add(-time.Minute), Type: models.ReminderPush}),
	}}
	users := &fakeUsers{user: models.User{Preferences: models.DefaultPreferences()}}
	sender := &recordingSender{}

	require.NoError(t, newTestDispatcher(st, users, sender, now).DispatchDue(context.Background()))

	assert.Empty(t, sender.sent)
	assert.False(t, st.events[0].Reminders[0].Sent)
}

func TestDispatchHonorsEmailPreference(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeEventStore{events: []models.Event{
		reminderEvent("muted", now.Add(2*time.Hour),
			models.Reminder{Time: now.Add(-time.Minute), Type: models.ReminderEmail}),
	}}
	prefs := models.DefaultPreferences()
	prefs.Notifications.Email = false
	users := &fakeUsers{user: models.User{Preferences: prefs}}
	sender := &recordingSender{}

	require.NoError(t, newTestDispatcher(st, users, sender, now).DispatchDue(context.Background()))

	// Not delivered, but still marked so it is never retried.
	assert.Empty(t, sender.sent)
	assert.True(t, st.events[0].Reminders[0].Sent)
}

func TestDispatchSkipsEventsOutsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	st := &fakeEventStore{events: []models.Event{
		// Event starts in three days: the due reminder is consumed but
		// no mail goes out.
		reminderEvent("far-out", now.Add(72*time.Hour),
			models.Reminder{Time: now.Add(-time.Minute), Type: models.ReminderEmail}),
		// Event already started.
		reminderEvent("in-the-past", now.Add(-time.Hour),
			models.Reminder{Time: now.Add(-time.Minute), Type: models.ReminderEmail}),
	}}
	users := &fakeUsers{user: models.User{Preferences: models.DefaultPreferences()}}
	sender := &recordingSender{}

	require.NoError(t, newTestDispatcher(st, users, sender, now).DispatchDue(context.Background()))

	assert.Empty(t, sender.sent)
	assert.True(t, st.events[0].Reminders[0].Sent)
	assert.True(t, st.events[1].Reminders[0].Sent)
}
