package whatsapp

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/pkg/logger"
)

// Sender chiquvchi xabar kanali
type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendDocument(ctx context.Context, to string, doc entity.Document) error
}

// ErrQueued is returned when the first send failed and the message was
// stored for a later retry.
var ErrQueued = errors.New("message queued for retry")

// RetryMessage navbatdagi xabar
type RetryMessage struct {
	ID          string           `json:"id"`
	To          string           `json:"to"`
	Text        string           `json:"message,omitempty"`
	Document    *entity.Document `json:"-"`
	Filename    string           `json:"filename,omitempty"`
	Attempts    int              `json:"attempts"`
	MaxAttempts int              `json:"max_attempts"`
	NextRetry   time.Time        `json:"next_retry"`
	CreatedAt   time.Time        `json:"created_at"`
	LastError   string           `json:"last_error,omitempty"`
}

// Failed reports whether every attempt was used.
func (m RetryMessage) Failed() bool {
	return m.Attempts >= m.MaxAttempts
}

// QueueStatus /webhook/queue-status javobi
type QueueStatus struct {
	QueueSize      int            `json:"queue_size"`
	PendingRetry   int            `json:"pending_retry"`
	Failed         int            `json:"failed"`
	FailedMessages []RetryMessage `json:"failed_messages"`
}

// RetryResult counts one pass over the queue.
type RetryResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// RetryQueue muvaffaqiyatsiz yuborilgan xabarlarni qayta yuboradi.
// First retry after RetryFirstDelay, then 2^attempts minutes.
type RetryQueue struct {
	sender      Sender
	maxAttempts int
	now         func() time.Time

	mu       sync.Mutex
	messages map[string]*RetryMessage
}

// NewRetryQueue sender orqali yuboradi; now nil bo'lsa time.Now
func NewRetryQueue(sender Sender, now func() time.Time) *RetryQueue {
	if now == nil {
		now = time.Now
	}
	return &RetryQueue{
		sender:      sender,
		maxAttempts: constants.RetryMaxAttempts,
		now:         now,
		messages:    make(map[string]*RetryMessage),
	}
}

// SendText tries once and queues the message on failure.
func (q *RetryQueue) SendText(ctx context.Context, to, text string) error {
	if err := q.sender.SendText(ctx, to, text); err != nil {
		q.enqueue(&RetryMessage{To: to, Text: text}, err)
		return errors.Join(ErrQueued, err)
	}
	return nil
}

// SendDocument tries once and queues the document on failure.
func (q *RetryQueue) SendDocument(ctx context.Context, to string, doc entity.Document) error {
	if err := q.sender.SendDocument(ctx, to, doc); err != nil {
		d := doc
		q.enqueue(&RetryMessage{To: to, Document: &d, Filename: doc.Filename}, err)
		return errors.Join(ErrQueued, err)
	}
	return nil
}

func (q *RetryQueue) enqueue(msg *RetryMessage, cause error) {
	now := q.now()
	msg.ID = uuid.NewString()
	msg.MaxAttempts = q.maxAttempts
	msg.CreatedAt = now
	msg.NextRetry = now.Add(constants.RetryFirstDelay)
	msg.LastError = cause.Error()

	q.mu.Lock()
	q.messages[msg.ID] = msg
	q.mu.Unlock()
	logger.ErrorLogger.Printf("📥 Xabar %s retry navbatiga qo'shildi (to=%s): %v", msg.ID, msg.To, cause)
}

// RetryDue sends the messages whose next retry time has passed.
func (q *RetryQueue) RetryDue(ctx context.Context) RetryResult {
	now := q.now()
	return q.retry(ctx, func(m *RetryMessage) bool { return !now.Before(m.NextRetry) })
}

// RetryNow jadvalga qaramasdan barcha kutayotgan xabarlarni yuboradi
func (q *RetryQueue) RetryNow(ctx context.Context) RetryResult {
	return q.retry(ctx, func(*RetryMessage) bool { return true })
}

func (q *RetryQueue) retry(ctx context.Context, due func(*RetryMessage) bool) RetryResult {
	q.mu.Lock()
	batch := make([]RetryMessage, 0, len(q.messages))
	for _, m := range q.messages {
		if !m.Failed() && due(m) {
			batch = append(batch, *m)
		}
	}
	q.mu.Unlock()
	sort.Slice(batch, func(i, j int) bool { return batch[i].CreatedAt.Before(batch[j].CreatedAt) })

	var res RetryResult
	for _, m := range batch {
		if ctx.Err() != nil {
			break
		}
		res.Attempted++
		err := q.send(ctx, m)
		if q.record(m.ID, err) {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	if res.Attempted > 0 {
		logger.InfoLogger.Printf("🔁 Retry: %d urinish, %d yuborildi, %d xato", res.Attempted, res.Sent, res.Failed)
	}
	return res
}

func (q *RetryQueue) send(ctx context.Context, m RetryMessage) error {
	if m.Document != nil {
		return q.sender.SendDocument(ctx, m.To, *m.Document)
	}
	return q.sender.SendText(ctx, m.To, m.Text)
}

// record returns true when the message left the queue.
func (q *RetryQueue) record(id string, err error) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.messages[id]
	if !ok {
		return false
	}
	if err == nil {
		delete(q.messages, id)
		logger.InfoLogger.Printf("✅ Xabar %s yuborildi, navbatdan olindi", id)
		return true
	}

	m.Attempts++
	m.LastError = err.Error()
	backoff := time.Duration(1<<m.Attempts) * time.Minute
	m.NextRetry = q.now().Add(backoff)
	if m.Failed() {
		logger.ErrorLogger.Printf("❌ Xabar %s maksimal urinishga yetdi (%d)", id, m.MaxAttempts)
	} else {
		logger.ErrorLogger.Printf("⚠️ Xabar %s xato (%d/%d), keyingi urinish %v dan keyin", id, m.Attempts, m.MaxAttempts, backoff)
	}
	return false
}

// Status navbat holati
func (q *RetryQueue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := QueueStatus{QueueSize: len(q.messages), FailedMessages: []RetryMessage{}}
	for _, m := range q.messages {
		if m.Failed() {
			st.Failed++
			st.FailedMessages = append(st.FailedMessages, *m)
		} else {
			st.PendingRetry++
		}
	}
	sort.Slice(st.FailedMessages, func(i, j int) bool {
		return st.FailedMessages[i].CreatedAt.Before(st.FailedMessages[j].CreatedAt)
	})
	return st
}

// Remove navbatdan xabarni o'chirish
func (q *RetryQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.messages[id]
	delete(q.messages, id)
	return ok
}

// Run retries due messages every interval until ctx is done.
func (q *RetryQueue) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.RetryCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.RetryDue(ctx)
		}
	}
}
