package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory repositories shared by the service tests.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == login || u.Username == login {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	r.users[id] = u
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubEventRepo struct {
	mu        sync.Mutex
	events    []domain.ClockEvent // append order
	createErr error
}

func (r *stubEventRepo) Create(_ context.Context, ev *domain.ClockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.events = append(r.events, *ev)
	return nil
}

func (r *stubEventRepo) Latest(_ context.Context, userID string) (*domain.ClockEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].UserID == userID {
			ev := r.events[i]
			return &ev, nil
		}
	}
	return nil, nil
}

func (r *stubEventRepo) LatestPerUser(_ context.Context, userIDs []string) (map[string]domain.ClockEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	out := make(map[string]domain.ClockEvent)
	for _, ev := range r.events {
		if want[ev.UserID] {
			out[ev.UserID] = ev
		}
	}
	return out, nil
}

func (r *stubEventRepo) ListByKindSince(_ context.Context, kind domain.EventKind, since time.Time) ([]domain.ClockEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClockEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if ev.Type == kind && !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *stubEventRepo) CountByKindSince(ctx context.Context, kind domain.EventKind, since time.Time) (int64, error) {
	evs, err := r.ListByKindSince(ctx, kind, since)
	return int64(len(evs)), err
}

func (r *stubEventRepo) ListByUserBetween(_ context.Context, userID string, from, to time.Time) ([]domain.ClockEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClockEvent
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if ev.UserID == userID && !ev.Timestamp.Before(from) && !ev.Timestamp.After(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *stubEventRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, ev := range r.events {
		if ev.UserID != userID {
			kept = append(kept, ev)
		}
	}
	r.events = kept
	return nil
}

func (r *stubEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type stubMessageRepo struct {
	mu        sync.Mutex
	messages  []domain.Message
	createErr error
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubMessageRepo) ListAll(_ context.Context) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		out = append(out, r.messages[i])
	}
	return out, nil
}

func (r *stubMessageRepo) ListByUser(_ context.Context, userID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) ListByClockEventIDs(_ context.Context, eventIDs []string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}
	var out []domain.Message
	for _, m := range r.messages {
		if want[m.ClockEventID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMessageRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].IsRead = true
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

func (r *stubMessageRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type stubQuestionRepo struct {
	mu        sync.Mutex
	questions []domain.Question
	createErr error
	answerErr map[string]error
}

func (r *stubQuestionRepo) CreateMany(_ context.Context, qs []domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.questions = append(r.questions, qs...)
	return nil
}

func (r *stubQuestionRepo) FindByID(_ context.Context, id string) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		if q.ID == id {
			found := q
			return &found, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (r *stubQuestionRepo) ListByMessageIDs(_ context.Context, messageIDs []string) ([]domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		want[id] = true
	}
	var out []domain.Question
	for _, q := range r.questions {
		if want[q.MessageID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *stubQuestionRepo) ListAnsweredByMessageIDs(ctx context.Context, messageIDs []string) ([]domain.Question, error) {
	all, _ := r.ListByMessageIDs(ctx, messageIDs)
	var out []domain.Question
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Answered() {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *stubQuestionRepo) SetAnswer(_ context.Context, id, answer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.answerErr[id]; err != nil {
		return err
	}
	for i := range r.questions {
		if r.questions[i].ID == id {
			a := answer
			r.questions[i].Answer = &a
			r.questions[i].IsReadByUser = false
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (r *stubQuestionRepo) MarkReadByUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.questions {
		if r.questions[i].ID == id {
			r.questions[i].IsReadByUser = true
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (r *stubQuestionRepo) DeleteByMessageIDs(_ context.Context, messageIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		want[id] = true
	}
	kept := r.questions[:0]
	for _, q := range r.questions {
		if !want[q.MessageID] {
			kept = append(kept, q)
		}
	}
	r.questions = kept
	return nil
}

type stubQuoteRepo struct {
	byDate map[time.Time]domain.QuoteOfTheDay
}

func (r *stubQuoteRepo) Upsert(_ context.Context, q *domain.QuoteOfTheDay) (*domain.QuoteOfTheDay, error) {
	if r.byDate == nil {
		r.byDate = make(map[time.Time]domain.QuoteOfTheDay)
	}
	key := q.Date.UTC()
	if existing, ok := r.byDate[key]; ok {
		q.ID = existing.ID
	}
	r.byDate[key] = *q
	saved := *q
	return &saved, nil
}

func (r *stubQuoteRepo) FindByDate(_ context.Context, date time.Time) (*domain.QuoteOfTheDay, error) {
	q, ok := r.byDate[date.UTC()]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return &q, nil
}

// stubTx runs fn directly. When atomic it snapshots the event and message
// stores and restores them if fn fails.
type stubTx struct {
	atomic   bool
	events   *stubEventRepo
	messages *stubMessageRepo
}

func (t *stubTx) Atomic() bool { return t.atomic }

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.atomic {
		return fn(ctx)
	}
	var evSnap []domain.ClockEvent
	var msgSnap []domain.Message
	if t.events != nil {
		evSnap = append([]domain.ClockEvent(nil), t.events.events...)
	}
	if t.messages != nil {
		msgSnap = append([]domain.Message(nil), t.messages.messages...)
	}
	if err := fn(ctx); err != nil {
		if t.events != nil {
			t.events.events = evSnap
		}
		if t.messages != nil {
			t.messages.messages = msgSnap
		}
		return err
	}
	return nil
}

// stubLocks serializes every key through one mutex and records the keys.
type stubLocks struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (l *stubLocks) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Deterministic runtime helpers.
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

// Now returns the current fake time and advances it by one second.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

func seqIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func strPtr(s string) *string { return &s }
