// Package memdb is an in-memory db.Store for tests.
package memdb

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/model"
)

// Store keeps everything in maps and enforces the same uniqueness rules as
// the PostgreSQL schema. InTx runs fn directly without rollback.
type Store struct {
	mu          sync.Mutex
	users       map[uuid.UUID]model.User
	events      map[uuid.UUID]model.Event
	occurrences map[uuid.UUID]model.EventOccurrence
	rsvps       map[uuid.UUID]model.RSVP
	logs        []model.ReminderLog
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       map[uuid.UUID]model.User{},
		events:      map[uuid.UUID]model.Event{},
		occurrences: map[uuid.UUID]model.EventOccurrence{},
		rsvps:       map[uuid.UUID]model.RSVP{},
	}
}

// AddUser registers a member of gymID.
func (m *Store) AddUser(gymID uuid.UUID, role model.Role) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := model.User{ID: uuid.New(), GymID: gymID, Email: uuid.NewString() + "@example.com", Role: role}
	m.users[u.ID] = u
	return u
}

func (m *Store) InTx(ctx context.Context, fn func(db.Store) error) error {
	return fn(m)
}

func (m *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.events[e.ID] = *e
	return nil
}

func (m *Store) GetEvent(ctx context.Context, gymID, eventID uuid.UUID) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || e.GymID != gymID {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *Store) ListEvents(ctx context.Context, gymID uuid.UUID) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Event{}
	for _, e := range m.events {
		if e.GymID == gymID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *Store) UpdateEvent(ctx context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.events[e.ID]
	if !ok || old.GymID != e.GymID {
		return sql.ErrNoRows
	}
	e.UpdatedAt = time.Now()
	m.events[e.ID] = *e
	return nil
}

func (m *Store) DeleteEvent(ctx context.Context, gymID, eventID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok || e.GymID != gymID {
		return sql.ErrNoRows
	}
	delete(m.events, eventID)
	var ids []uuid.UUID
	for id, o := range m.occurrences {
		if o.EventID == eventID {
			ids = append(ids, id)
		}
	}
	m.deleteRSVPsLocked(ids)
	m.deleteLogsLocked(ids)
	for _, id := range ids {
		delete(m.occurrences, id)
	}
	return nil
}

func (m *Store) hasDateLocked(eventID uuid.UUID, date time.Time) bool {
	for _, o := range m.occurrences {
		if o.EventID == eventID && o.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (m *Store) InsertOccurrences(ctx context.Context, eventID uuid.UUID, dates []time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range dates {
		if m.hasDateLocked(eventID, d) {
			continue
		}
		id := uuid.New()
		m.occurrences[id] = model.EventOccurrence{
			ID:        id,
			EventID:   eventID,
			GymID:     m.events[eventID].GymID,
			Date:      d,
			Status:    model.OccurrenceScheduled,
			CreatedAt: time.Now(),
		}
		n++
	}
	return n, nil
}

func (m *Store) InsertCustomOccurrence(ctx context.Context, o *model.EventOccurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasDateLocked(o.EventID, o.Date) {
		return &pq.Error{Code: "23505"}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.IsCustom = true
	o.GymID = m.events[o.EventID].GymID
	o.CreatedAt = time.Now()
	m.occurrences[o.ID] = *o
	return nil
}

func (m *Store) GetOccurrence(ctx context.Context, id uuid.UUID) (*model.EventOccurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.occurrences[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &o, nil
}

func (m *Store) ListOccurrences(ctx context.Context, eventID uuid.UUID, from, to *time.Time) ([]model.EventOccurrence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.EventOccurrence{}
	for _, o := range m.occurrences {
		if o.EventID != eventID {
			continue
		}
		if from != nil && o.Date.Before(*from) {
			continue
		}
		if to != nil && o.Date.After(*to) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Store) ListOccurrenceIDsFrom(ctx context.Context, eventID uuid.UUID, from time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []uuid.UUID{}
	for id, o := range m.occurrences {
		if o.EventID == eventID && !o.Date.Before(from) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Store) DeleteOccurrences(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.occurrences[id]; ok {
			delete(m.occurrences, id)
			n++
		}
	}
	return n, nil
}

func (m *Store) SetOccurrenceStatus(ctx context.Context, id uuid.UUID, status model.OccurrenceStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.occurrences[id]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = status
	m.occurrences[id] = o
	return nil
}

func (m *Store) UpsertRSVP(ctx context.Context, r *model.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.rsvps {
		if existing.UserID == r.UserID && existing.OccurrenceID == r.OccurrenceID {
			existing.Status = r.Status
			existing.UpdatedAt = time.Now()
			m.rsvps[id] = existing
			*r = existing
			return nil
		}
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.rsvps[r.ID] = *r
	return nil
}

func (m *Store) ListRSVPs(ctx context.Context, occurrenceID uuid.UUID) ([]model.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.RSVP{}
	for _, r := range m.rsvps {
		if r.OccurrenceID == occurrenceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Store) deleteRSVPsLocked(ids []uuid.UUID) int64 {
	set := idSet(ids)
	var n int64
	for id, r := range m.rsvps {
		if _, ok := set[r.OccurrenceID]; ok {
			delete(m.rsvps, id)
			n++
		}
	}
	return n
}

func (m *Store) deleteLogsLocked(ids []uuid.UUID) int64 {
	set := idSet(ids)
	kept := m.logs[:0]
	var n int64
	for _, l := range m.logs {
		if _, ok := set[l.OccurrenceID]; ok {
			n++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return n
}

func (m *Store) DeleteRSVPsForOccurrences(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteRSVPsLocked(ids), nil
}

func (m *Store) ListReminderTargets(ctx context.Context, now time.Time) ([]model.ReminderTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReminderTarget{}
	for _, o := range m.occurrences {
		e := m.events[o.EventID]
		if o.Status != model.OccurrenceScheduled || !o.Date.After(now) || len(e.ReminderDays) == 0 {
			continue
		}
		maxDays := 0.0
		for _, d := range e.ReminderDays {
			maxDays = max(maxDays, d)
		}
		if o.Date.After(now.Add(time.Duration(maxDays * float64(24*time.Hour)))) {
			continue
		}
		out = append(out, model.ReminderTarget{
			OccurrenceID: o.ID,
			EventID:      e.ID,
			GymID:        e.GymID,
			Title:        e.Title,
			Date:         o.Date,
			ReminderDays: e.ReminderDays,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Store) ListReminderRecipients(ctx context.Context, occurrenceID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.occurrences[occurrenceID]
	gymID := m.events[o.EventID].GymID
	declined := map[uuid.UUID]bool{}
	for _, r := range m.rsvps {
		if r.OccurrenceID == occurrenceID && r.Status == model.RSVPNotGoing {
			declined[r.UserID] = true
		}
	}
	out := []uuid.UUID{}
	for _, u := range m.users {
		if u.GymID == gymID && !declined[u.ID] {
			out = append(out, u.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *Store) ListReminderLogs(ctx context.Context, ids []uuid.UUID) ([]model.ReminderLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := idSet(ids)
	out := []model.ReminderLog{}
	for _, l := range m.logs {
		if _, ok := set[l.OccurrenceID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Store) InsertReminderLog(ctx context.Context, l *model.ReminderLog) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.logs {
		if existing.OccurrenceID == l.OccurrenceID && existing.UserID == l.UserID && existing.ReminderType == l.ReminderType {
			return false, nil
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	m.logs = append(m.logs, *l)
	return true, nil
}

func (m *Store) DeleteReminderLogsForOccurrences(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLogsLocked(ids), nil
}

// RSVPCount returns the number of RSVPs referencing occurrenceID.
func (m *Store) RSVPCount(occurrenceID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rsvps {
		if r.OccurrenceID == occurrenceID {
			n++
		}
	}
	return n
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Counts returns the number of stored events, occurrences, RSVPs and
// reminder logs.
func (m *Store) Counts() (events, occurrences, rsvps, logs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events), len(m.occurrences), len(m.rsvps), len(m.logs)
}
