package service

import (
	"sync"
	"time"

	"engagement_hub/internal/domain/model"
	"engagement_hub/internal/domain/repository"
)

type emitted struct {
	kind      string
	recipient string
	payload   map[string]string
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) Emit(kind, recipientID string, payload map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{kind: kind, recipient: recipientID, payload: payload})
}

func (f *fakeEmitter) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeEmitter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seedUser(store *repository.Store, u model.User) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = testNow
		u.UpdatedAt = testNow
	}
	_ = store.Update(func(tx *repository.WriteTx) error {
		tx.PutUser(&u)
		return nil
	})
}

func seedRequest(store *repository.Store, r model.MentorshipRequest) {
	_ = store.Update(func(tx *repository.WriteTx) error {
		tx.PutRequest(&r)
		return nil
	})
}

func seedTeam(store *repository.Store, t model.Team) {
	_ = store.Update(func(tx *repository.WriteTx) error {
		tx.PutTeam(&t)
		return nil
	})
}
