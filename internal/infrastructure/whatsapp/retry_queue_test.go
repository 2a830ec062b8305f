package whatsapp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quote-bot/internal/domain/entity"
)

type flakySender struct {
	mu    sync.Mutex
	fail  bool
	texts []string
	docs  []string
}

func (f *flakySender) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakySender) SendText(ctx context.Context, to, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("graph api down")
	}
	f.texts = append(f.texts, to+":"+text)
	return nil
}

func (f *flakySender) SendDocument(ctx context.Context, to string, doc entity.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("graph api down")
	}
	f.docs = append(f.docs, to+":"+doc.Filename)
	return nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newQueue() (*RetryQueue, *flakySender, *manualClock) {
	sender := &flakySender{fail: true}
	clock := &manualClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	return NewRetryQueue(sender, clock.Now), sender, clock
}

func TestRetryQueueSendsDirectlyWhenHealthy(t *testing.T) {
	q, sender, _ := newQueue()
	sender.setFail(false)

	require.NoError(t, q.SendText(context.Background(), "584121234567", "Hola"))
	assert.Equal(t, []string{"584121234567:Hola"}, sender.texts)
	assert.Zero(t, q.Status().QueueSize)
}

func TestRetryQueueBackoffSchedule(t *testing.T) {
	q, _, clock := newQueue()
	ctx := context.Background()

	err := q.SendText(ctx, "584121234567", "Hola")
	assert.ErrorIs(t, err, ErrQueued)
	st := q.Status()
	assert.Equal(t, 1, st.QueueSize)
	assert.Equal(t, 1, st.PendingRetry)

	assert.Zero(t, q.RetryDue(ctx).Attempted, "first retry waits one minute")
	clock.Advance(time.Minute)

	// attempts 1..4 wait 2, 4, 8, 16 minutes
	for attempt, wait := range []time.Duration{2, 4, 8, 16} {
		res := q.RetryDue(ctx)
		require.Equal(t, 1, res.Attempted, "attempt %d", attempt+1)
		assert.Equal(t, 1, res.Failed)

		clock.Advance(wait*time.Minute - time.Second)
		assert.Zero(t, q.RetryDue(ctx).Attempted, "not due before %v", wait*time.Minute)
		clock.Advance(time.Second)
	}

	res := q.RetryDue(ctx)
	assert.Equal(t, 1, res.Attempted)

	st = q.Status()
	assert.Equal(t, 1, st.Failed)
	assert.Zero(t, st.PendingRetry)
	require.Len(t, st.FailedMessages, 1)
	assert.Equal(t, 5, st.FailedMessages[0].Attempts)
	assert.Equal(t, "graph api down", st.FailedMessages[0].LastError)

	clock.Advance(24 * time.Hour)
	assert.Zero(t, q.RetryDue(ctx).Attempted, "failed messages are not retried")
}

func TestRetryQueueRecovers(t *testing.T) {
	q, sender, clock := newQueue()
	ctx := context.Background()

	_ = q.SendDocument(ctx, "584121234567", entity.Document{Filename: "cotizacion_1.xlsx", Content: []byte("x")})
	_ = q.SendText(ctx, "584121234567", "Tu cotización")
	sender.setFail(false)

	res := q.RetryNow(ctx)
	assert.Equal(t, RetryResult{Attempted: 2, Sent: 2}, res)
	assert.Equal(t, []string{"584121234567:cotizacion_1.xlsx"}, sender.docs)
	assert.Equal(t, []string{"584121234567:Tu cotización"}, sender.texts)
	assert.Zero(t, q.Status().QueueSize)

	clock.Advance(time.Hour)
	assert.Zero(t, q.RetryDue(ctx).Attempted)
}

func TestRetryQueueRemove(t *testing.T) {
	q, _, _ := newQueue()
	_ = q.SendText(context.Background(), "584121234567", "Hola")
	st := q.Status()
	require.Equal(t, 1, st.QueueSize)

	var id string
	q.mu.Lock()
	for k := range q.messages {
		id = k
	}
	q.mu.Unlock()

	assert.True(t, q.Remove(id))
	assert.False(t, q.Remove(id))
}

func TestRetryQueueRunStopsOnCancel(t *testing.T) {
	q, sender, clock := newQueue()
	_ = q.SendText(context.Background(), "584121234567", "Hola")
	sender.setFail(false)
	clock.Advance(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return q.Status().QueueSize == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
