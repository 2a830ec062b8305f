package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/yourusername/quote-bot/internal/domain/constants"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	msgTimeout     = "⏱️ Estamos tardando más de lo normal. Por favor, intenta de nuevo en un momento."
	msgInternal    = "⚠️ Ocurrió un error interno. Por favor, intenta de nuevo."
	msgBusy        = "⚠️ Estamos atendiendo muchos mensajes. Por favor, espera un momento."
	msgRateLimited = "⚠️ Demasiados mensajes seguidos. Por favor, espera un momento."
	notifyTimeout  = 10 * time.Second
)

var (
	ErrQueueFull   = errors.New("worker queue is full")
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrClosed      = errors.New("worker pool is closed")
)

// Dispatcher xabarni qayta ishlaydi va javob qaytaradi
type Dispatcher interface {
	Handle(ctx context.Context, msg entity.InboundMessage) (*entity.Reply, error)
}

// Responder sends a reply back over the channel the message came from.
type Responder interface {
	Respond(ctx context.Context, msg entity.InboundMessage, reply *entity.Reply) error
}

// RejectMetrics counts dropped messages.
type RejectMetrics interface {
	MessageRejected(ctx context.Context, reason string)
}

// Options pool sozlamalari
type Options struct {
	Workers       int
	QueueSize     int
	Timeout       time.Duration
	RatePerSecond int
	Metrics       RejectMetrics
}

type phoneLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Pool mijoz telefoniga qarab shardlangan worker pool. One phone always
// lands on the same shard, so its messages run in arrival order.
type Pool struct {
	dispatcher Dispatcher
	responder  Responder
	opts       Options

	shards []chan entity.InboundMessage
	wg     sync.WaitGroup

	mu       sync.RWMutex
	closed   bool
	limiters map[string]*phoneLimiter
	limMu    sync.Mutex
	cancel   context.CancelFunc
}

// New nolga teng qiymatlar uchun constants dagi standartlar ishlatiladi
func New(d Dispatcher, r Responder, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = constants.DefaultWorkerCount
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = constants.WorkerQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultMessageTimeout
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = constants.MaxMessagesPerSecond
	}
	p := &Pool{
		dispatcher: d,
		responder:  r,
		opts:       opts,
		shards:     make([]chan entity.InboundMessage, opts.Workers),
		limiters:   make(map[string]*phoneLimiter),
	}
	for i := range p.shards {
		p.shards[i] = make(chan entity.InboundMessage, opts.QueueSize)
	}
	return p
}

// Start launches one goroutine per shard plus the limiter cleanup.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	logger.InfoLogger.Printf("🧵 %d ta worker ishga tushdi", len(p.shards))
	for i, shard := range p.shards {
		p.wg.Add(1)
		go p.worker(ctx, i, shard)
	}
	go p.cleanupLimiters(ctx)
}

func (p *Pool) shardFor(phone string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return int(h.Sum32() % uint32(len(p.shards)))
}

// Submit navbatga qo'yadi; rejected messages get a short notice.
func (p *Pool) Submit(msg entity.InboundMessage) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.reject(msg, "shutdown", "")
		return ErrClosed
	}
	if !p.allow(msg.Phone) {
		logger.ErrorLogger.Printf("🚦 Rate limit: %s", msg.Phone)
		p.reject(msg, "rate_limited", msgRateLimited)
		return ErrRateLimited
	}

	shard := p.shards[p.shardFor(msg.Phone)]
	select {
	case shard <- msg:
		return nil
	default:
		logger.ErrorLogger.Printf("📛 Worker navbati to'la (%d/%d), %s rad etildi", len(shard), cap(shard), msg.Phone)
		p.reject(msg, "queue_full", msgBusy)
		return ErrQueueFull
	}
}

func (p *Pool) reject(msg entity.InboundMessage, reason, notice string) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.MessageRejected(context.Background(), reason)
	}
	if notice != "" {
		go p.notify(msg, notice)
	}
}

func (p *Pool) notify(msg entity.InboundMessage, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := p.responder.Respond(ctx, msg, &entity.Reply{Text: text}); err != nil {
		logger.ErrorLogger.Printf("❌ %s ga javob yuborilmadi: %v", msg.Phone, err)
	}
}

func (p *Pool) worker(ctx context.Context, id int, queue <-chan entity.InboundMessage) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-queue:
			if !ok {
				return
			}
			p.process(ctx, msg)
		}
	}
}

func (p *Pool) process(parent context.Context, msg entity.InboundMessage) {
	ctx, cancel := context.WithTimeout(parent, p.opts.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Printf("💥 Panic %s xabarini qayta ishlashda: %v", msg.Phone, r)
			p.notify(msg, msgInternal)
		}
	}()

	reply, err := p.dispatcher.Handle(ctx, msg)
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logger.ErrorLogger.Printf("⏱️ %s uchun vaqt tugadi (%v)", msg.Phone, p.opts.Timeout)
		p.notify(msg, msgTimeout)
		return
	case errors.Is(err, context.Canceled):
		logger.InfoLogger.Printf("So'rov bekor qilindi: %s", msg.Phone)
		return
	default:
		logger.WithFields(map[string]interface{}{"phone": msg.Phone, "message_id": msg.ID}).Errorf("dispatch failed: %v", err)
		p.notify(msg, msgInternal)
		return
	}
	if reply == nil || (reply.Text == "" && len(reply.Documents) == 0) {
		return
	}

	sendCtx, sendCancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer sendCancel()
	if err := p.responder.Respond(sendCtx, msg, reply); err != nil {
		logger.ErrorLogger.Printf("❌ %s ga javob yuborilmadi: %v", msg.Phone, err)
	}
}

func (p *Pool) allow(phone string) bool {
	p.limMu.Lock()
	defer p.limMu.Unlock()

	l, ok := p.limiters[phone]
	if !ok {
		l = &phoneLimiter{limiter: rate.NewLimiter(rate.Limit(p.opts.RatePerSecond), p.opts.RatePerSecond)}
		p.limiters[phone] = l
	}
	l.lastSeen = time.Now()
	return l.limiter.Allow()
}

func (p *Pool) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimiterCleanupTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneLimiters(time.Now(), constants.RateLimiterMaxIdleTime)
		}
	}
}

func (p *Pool) pruneLimiters(now time.Time, maxIdle time.Duration) int {
	p.limMu.Lock()
	defer p.limMu.Unlock()
	removed := 0
	for phone, l := range p.limiters {
		if now.Sub(l.lastSeen) > maxIdle {
			delete(p.limiters, phone)
			removed++
		}
	}
	if removed > 0 {
		logger.InfoLogger.Printf("🧹 %d ta nofaol rate limiter o'chirildi", removed)
	}
	return removed
}

// Shutdown stops accepting, drains the queues and waits for the workers.
// If ctx expires first the in-flight messages are canceled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for _, shard := range p.shards {
		close(shard)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.InfoLogger.Println("✅ Worker pool to'xtadi")
		if p.cancel != nil {
			p.cancel()
		}
		return nil
	case <-ctx.Done():
		if p.cancel != nil {
			p.cancel()
		}
		<-done
		return ctx.Err()
	}
}
