// ABOUTME: Tests for the long-poll notification broker
// ABOUTME: Covers delivery, timeout, disconnect, supersession, and concurrent use

package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bonte-Project/bonte-server/internal/store"
)

func testMessage(id string) *store.TrainerMessage {
	return &store.TrainerMessage{
		ID:        id,
		UserID:    "user-1",
		TrainerID: "trainer-1",
		Content:   "keep it up",
		FromUser:  false,
		SentAt:    time.Now(),
	}
}

func TestAwaitReceivesNotify(t *testing.T) {
	b := NewBroker(nil)

	done := make(chan struct{})
	var got *store.TrainerMessage
	var gotErr error
	go func() {
		defer close(done)
		got, gotErr = b.Await(context.Background(), "user-1", 5*time.Second)
	}()

	// Wait for the waiter to register before notifying.
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.waiters) == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, b.Notify("user-1", testMessage("m1")))

	<-done
	require.NoError(t, gotErr)
	require.NotNil(t, got)
	assert.Equal(t, "m1", got.ID)
}

func TestAwaitTimesOut(t *testing.T) {
	b := NewBroker(nil)

	msg, err := b.Await(context.Background(), "user-1", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)

	// Registration must be gone so a later notify is a no-op.
	assert.False(t, b.Notify("user-1", testMessage("m1")))
}

func TestAwaitCanceledOnDisconnect(t *testing.T) {
	b := NewBroker(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var gotErr error
	go func() {
		defer close(done)
		_, gotErr = b.Await(ctx, "user-1", 5*time.Second)
	}()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.waiters) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.ErrorIs(t, gotErr, context.Canceled)

	assert.False(t, b.Notify("user-1", testMessage("m1")))
}

func TestNotifyWithoutWaiterIsNoOp(t *testing.T) {
	b := NewBroker(nil)
	assert.False(t, b.Notify("nobody", testMessage("m1")))
}

func TestSecondAwaitSupersedesFirst(t *testing.T) {
	b := NewBroker(nil)

	first := make(chan struct{})
	var firstMsg *store.TrainerMessage
	var firstErr error
	go func() {
		defer close(first)
		firstMsg, firstErr = b.Await(context.Background(), "user-1", 5*time.Second)
	}()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.waiters) == 1
	}, time.Second, 5*time.Millisecond)

	second := make(chan struct{})
	var secondMsg *store.TrainerMessage
	var secondErr error
	go func() {
		defer close(second)
		secondMsg, secondErr = b.Await(context.Background(), "user-1", 5*time.Second)
	}()

	// The first caller resolves empty as soon as the second registers.
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("superseded waiter did not resolve")
	}
	require.NoError(t, firstErr)
	assert.Nil(t, firstMsg)

	// A notify now reaches the second caller only.
	require.True(t, b.Notify("user-1", testMessage("m2")))
	<-second
	require.NoError(t, secondErr)
	require.NotNil(t, secondMsg)
	assert.Equal(t, "m2", secondMsg.ID)
}

func TestNoStaleDeliveryAfterTimeout(t *testing.T) {
	b := NewBroker(nil)

	msg, err := b.Await(context.Background(), "user-1", 10*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, msg)

	// Re-register; an old notify must not leak into the new registration.
	done := make(chan struct{})
	var got *store.TrainerMessage
	go func() {
		defer close(done)
		got, _ = b.Await(context.Background(), "user-1", 5*time.Second)
	}()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.waiters) == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, b.Notify("user-1", testMessage("fresh")))
	<-done
	require.NotNil(t, got)
	assert.Equal(t, "fresh", got.ID)
}

func TestConcurrentUsersAreIndependent(t *testing.T) {
	b := NewBroker(nil)

	const n = 8
	var wg sync.WaitGroup
	results := make([]*store.TrainerMessage, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = b.Await(context.Background(), userID(i), 5*time.Second)
		}(i)
	}

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.waiters) == n
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < n; i++ {
		msg := testMessage(userID(i))
		msg.UserID = userID(i)
		require.True(t, b.Notify(userID(i), msg))
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NotNil(t, results[i])
		assert.Equal(t, userID(i), results[i].ID)
	}
}

func userID(i int) string {
	return string(rune('a' + i))
}
