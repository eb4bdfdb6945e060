package stream

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	subscriptionBuffer = 32
)

// Hub fans expense changes out to live view subscribers. Changes are routed
// to a fixed set of workers by consistent hashing on the expense id, so the
// changes of one expense reach a subscriber in the order they were
// published.
type Hub struct {
	workers []chan domain.ExpenseChange
	log     zerolog.Logger

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// Subscription is one open live view. C is closed by Close.
type Subscription struct {
	C <-chan domain.ExpenseChange

	id        uint64
	hub       *Hub
	principal domain.Principal
	view      domain.ExpenseView
	ch        chan domain.ExpenseChange
	closeOnce sync.Once
}

// NewHub creates a Hub with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHub(numWorkers int, log zerolog.Logger) *Hub {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	h := &Hub{
		workers: make([]chan domain.ExpenseChange, numWorkers),
		log:     log,
		subs:    make(map[uint64]*Subscription),
	}
	for i := range h.workers {
		h.workers[i] = make(chan domain.ExpenseChange, channelBuffer)
	}
	return h
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	for i, ch := range h.workers {
		go h.runWorker(ctx, i, ch)
	}
}

// Publish hands a change to the worker responsible for its expense. It never
// blocks; a change is dropped when that worker is saturated.
func (h *Hub) Publish(change domain.ExpenseChange) {
	if change.Expense == nil {
		return
	}
	idx := h.shardIndex(change.Expense.ID)
	select {
	case h.workers[idx] <- change:
		metrics.StreamQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(h.workers[idx])))
	default:
		metrics.StreamDroppedTotal.Inc()
		h.log.Warn().Str("expense_id", change.Expense.ID).Int("worker_id", idx).Msg("hub worker saturated, change dropped")
	}
}

// Subscribe opens a live view for p. The caller must Close the subscription.
func (h *Hub) Subscribe(p domain.Principal, view domain.ExpenseView) (*Subscription, error) {
	if err := view.Authorize(p); err != nil {
		return nil, err
	}

	ch := make(chan domain.ExpenseChange, subscriptionBuffer)
	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		C:         ch,
		id:        h.nextID,
		hub:       h,
		principal: p,
		view:      view,
		ch:        ch,
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	metrics.StreamSubscribers.WithLabelValues(string(view)).Inc()
	return sub, nil
}

// Close unregisters the subscription and closes C. It is safe to call more
// than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		close(s.ch)
		s.hub.mu.Unlock()
		metrics.StreamSubscribers.WithLabelValues(string(s.view)).Dec()
	})
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// shardIndex maps an expense id deterministically to a worker index.
func (h *Hub) shardIndex(expenseID string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(expenseID))
	return int(hash.Sum32() % uint32(len(h.workers)))
}

func (h *Hub) runWorker(ctx context.Context, id int, ch <-chan domain.ExpenseChange) {
	depth := metrics.StreamQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-ch:
			depth.Set(float64(len(ch)))
			h.deliver(change)
		}
	}
}

// deliver sends under the read lock so Close cannot close a channel that is
// being written to.
func (h *Hub) deliver(change domain.ExpenseChange) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.view.Concerns(sub.principal, change.Expense) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			metrics.StreamDroppedTotal.Inc()
			h.log.Debug().
				Str("expense_id", change.Expense.ID).
				Str("user_id", sub.principal.UserID).
				Str("view", string(sub.view)).
				Msg("subscriber lagging, change dropped")
		}
	}
}
