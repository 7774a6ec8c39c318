package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/repository/contract"
	"paper-chat-be/internal/repository/memory"
)

func TestCleanupRunEvictsIdleConversations(t *testing.T) {
	store := memory.NewChatStore(memory.Options{InactivityTimeout: 20 * time.Millisecond})
	require.NoError(t, store.Init(bg, "sess", "paper", []contract.ChatMessage{{Role: "system", Content: "ctx"}}))

	ctx, cancel := context.WithCancel(bg)
	defer cancel()

	reaper := NewCleanupService(store, logger.NewNopLogger(), 10*time.Millisecond)
	go reaper.Run(ctx)

	assert.Eventually(t, func() bool {
		_, exists := store.Get(bg, "sess", "paper")
		return !exists
	}, 2*time.Second, 10*time.Millisecond, "reaper should evict the idle conversation")
}

func TestCleanupRunStopsOnContextCancel(t *testing.T) {
	store := memory.NewChatStore(memory.Options{})
	ctx, cancel := context.WithCancel(bg)

	done := make(chan struct{})
	reaper := NewCleanupService(store, logger.NewNopLogger(), 5*time.Millisecond)
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type panickyStore struct {
	contract.IChatStore
	calls int
}

func (s *panickyStore) SweepIdle(_ context.Context) int {
	s.calls++
	if s.calls == 1 {
		panic("store blew up")
	}
	return 0
}

func TestCleanupSweepSurvivesPanic(t *testing.T) {
	store := &panickyStore{}
	svc := NewCleanupService(store, logger.NewNopLogger(), time.Minute).(*cleanupService)

	assert.NotPanics(t, func() { svc.sweep(bg) })
	svc.sweep(bg)
	assert.Equal(t, 2, store.calls, "schedule keeps running after a panic")
}
