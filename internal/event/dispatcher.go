package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/postboard/pkg/logger"
)

// Handler consumes one event. Errors are logged and otherwise ignored.
type Handler func(ctx context.Context, e Event) error

// Dispatcher 本地异步事件分发：缓冲队列 + 若干 worker，队列满时丢弃并告警
type Dispatcher struct {
	ch         chan Event
	mu         sync.RWMutex
	handlers   []Handler
	timeout    time.Duration
	sendMu     sync.RWMutex // guards stopped against in-flight sends
	stopped    bool
	dropped    atomic.Int64
	handled    atomic.Int64
	wg         sync.WaitGroup
	handlerErr atomic.Int64
}

func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Dispatcher{ch: make(chan Event, queueSize), timeout: 5 * time.Second}
}

// Subscribe registers h for every subsequent event.
func (d *Dispatcher) Subscribe(h Handler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

// Publish enqueues e without blocking.
func (d *Dispatcher) Publish(_ context.Context, e Event) {
	d.sendMu.RLock()
	defer d.sendMu.RUnlock()
	if d.stopped {
		d.dropped.Add(1)
		logger.Warn("dispatcher stopped, drop event", zap.String("entity", string(e.Entity)), zap.Int64("id", e.ID))
		return
	}
	select {
	case d.ch <- e:
	default:
		d.dropped.Add(1)
		logger.Warn("event queue full, drop event",
			zap.String("entity", string(e.Entity)),
			zap.String("op", string(e.Op)),
			zap.Int64("id", e.ID),
		)
	}
}

// Start 启动 worker；返回的停止函数会处理完已入队的事件，或在 ctx 结束时返回
func (d *Dispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case e := <-d.ch:
					d.dispatch(e)
				case <-done:
					for {
						select {
						case e := <-d.ch:
							d.dispatch(e)
						default:
							return
						}
					}
				}
			}
		}()
	}

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			d.sendMu.Lock()
			d.stopped = true
			d.sendMu.Unlock()
			close(done)
		})
		finished := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) dispatch(e Event) {
	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()

	for _, h := range handlers {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := h(ctx, e); err != nil {
			d.handlerErr.Add(1)
			logger.Warn("event handler failed",
				zap.String("entity", string(e.Entity)),
				zap.String("op", string(e.Op)),
				zap.String("path", e.Path),
				zap.Error(err),
			)
		}
		cancel()
	}
	d.handled.Add(1)
}

// Stats 返回采样计数
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Queued:        len(d.ch),
		Handled:       d.handled.Load(),
		Dropped:       d.dropped.Load(),
		HandlerErrors: d.handlerErr.Load(),
	}
}

// Stats summarises dispatcher activity.
type Stats struct {
	Queued        int
	Handled       int64
	Dropped       int64
	HandlerErrors int64
}
