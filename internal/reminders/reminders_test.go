package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligeramy/somas/internal/engine"
)

type fakeGate struct {
	due      []engine.DueReminder
	recorded []engine.DueReminder
	askedAt  time.Time
}

func (g *fakeGate) DueReminders(ctx context.Context, now time.Time) ([]engine.DueReminder, error) {
	g.askedAt = now
	return g.due, nil
}

func (g *fakeGate) RecordReminderSent(ctx context.Context, d engine.DueReminder, sentAt time.Time) (bool, error) {
	g.recorded = append(g.recorded, d)
	return true, nil
}

type fakeNotifier struct {
	failFor uuid.UUID
	sent    []engine.DueReminder
}

func (n *fakeNotifier) Notify(ctx context.Context, r engine.DueReminder) error {
	if r.UserID == n.failFor {
		return errors.New("unreachable")
	}
	n.sent = append(n.sent, r)
	return nil
}

func (n *fakeNotifier) Close() {}

type fakeLocker struct {
	held     bool
	unlocked bool
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token", true, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.unlocked = token == "token"
	l.held = false
	return nil
}

func dueFor(users ...uuid.UUID) []engine.DueReminder {
	occ, event, gym := uuid.New(), uuid.New(), uuid.New()
	out := make([]engine.DueReminder, len(users))
	for i, u := range users {
		out[i] = engine.DueReminder{
			OccurrenceID: occ,
			EventID:      event,
			GymID:        gym,
			UserID:       u,
			ReminderType: "1d",
			Title:        "Morning Practice",
			Date:         time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestRunOnceRecordsOnlyDelivered(t *testing.T) {
	ok, broken := uuid.New(), uuid.New()
	gate := &fakeGate{due: dueFor(ok, broken)}
	notifier := &fakeNotifier{failFor: broken}
	locker := &fakeLocker{}

	loc := time.FixedZone("EST", -5*60*60)
	d := NewDispatcher(gate, notifier, locker, loc)
	d.now = func() time.Time { return time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC) }

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PassResult{Due: 2, Sent: 1, Failed: 1}, res)
	require.Len(t, gate.recorded, 1)
	assert.Equal(t, ok, gate.recorded[0].UserID)
	assert.Equal(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), gate.askedAt)
	assert.True(t, locker.unlocked)
}

func TestRunOnceSkipsWhenLocked(t *testing.T) {
	gate := &fakeGate{due: dueFor(uuid.New())}
	notifier := &fakeNotifier{}
	d := NewDispatcher(gate, notifier, &fakeLocker{held: true}, nil)

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, gate.recorded)
}

func TestRunOnceWithoutLocker(t *testing.T) {
	gate := &fakeGate{due: dueFor(uuid.New(), uuid.New())}
	d := NewDispatcher(gate, LogNotifier{}, nil, nil)

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Len(t, gate.recorded, 2)
}

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMQTTClient struct {
	mqtt.Client
	topic   string
	payload []byte
	err     error
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.payload = payload.([]byte)
	return &fakeToken{err: c.err}
}

func TestMQTTNotifierPublishesToUserTopic(t *testing.T) {
	client := &fakeMQTTClient{}
	n := newMQTTNotifier(client)
	r := dueFor(uuid.New())[0]

	require.NoError(t, n.Notify(context.Background(), r))
	assert.Equal(t, "gyms/"+r.GymID.String()+"/users/"+r.UserID.String()+"/reminders", client.topic)

	var msg Message
	require.NoError(t, json.Unmarshal(client.payload, &msg))
	assert.Equal(t, "reminder.due", msg.Type)
	assert.Equal(t, "1d", msg.ReminderType)
	assert.Equal(t, "2026-10-19T07:00:00", msg.Date)

	client.err = errors.New("broker gone")
	assert.Error(t, n.Notify(context.Background(), r))
}

type fakePublisher struct {
	subject string
	data    []byte
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return nil
}

func TestNATSNotifierPublishes(t *testing.T) {
	pub := &fakePublisher{}
	n := &NATSNotifier{pub: pub}
	r := dueFor(uuid.New())[0]

	require.NoError(t, n.Notify(context.Background(), r))
	assert.Equal(t, "reminders.due", pub.subject)
	assert.Contains(t, string(pub.data), r.UserID.String())
	n.Close()
}

func TestStartScheduler(t *testing.T) {
	d := NewDispatcher(&fakeGate{}, LogNotifier{}, nil, nil)

	_, err := StartScheduler("not a schedule", d)
	assert.Error(t, err)

	c, err := StartScheduler("*/5 * * * *", d)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
