package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"pool_watch/internal/domain"
	"pool_watch/internal/infra/storage"
)

// fakeNotifier records outbound messages; chat ids in failFor error out.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

type sentMessage struct {
	ChatID int64
	Text   string
	Menu   domain.Menu
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[int64]bool)}
}

func (n *fakeNotifier) Send(ctx context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[chatID] {
		return &domain.DispatchError{ChatID: chatID, Err: errors.New("blocked")}
	}
	n.sent = append(n.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (n *fakeNotifier) SendMenu(ctx context.Context, chatID int64, text string, menu domain.Menu) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[chatID] {
		return &domain.DispatchError{ChatID: chatID, Err: errors.New("blocked")}
	}
	n.sent = append(n.sent, sentMessage{ChatID: chatID, Text: text, Menu: menu})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMessage, len(n.sent))
	copy(out, n.sent)
	return out
}

// fakeFetcher serves a canned batch or a canned error.
type fakeFetcher struct {
	snapshots []domain.PoolSnapshot
	err       error
}

func (f *fakeFetcher) FetchAll(ctx context.Context) ([]domain.PoolSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots, nil
}

func testStore(t *testing.T) domain.StatsStore {
	t.Helper()
	s, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}
