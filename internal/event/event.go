// Package event carries change notifications from the mutation layer to
// whatever read side needs to refresh.
package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/postboard/pkg/logger"
)

// Entity names the record type an event is about.
type Entity string

const (
	EntityUser Entity = "user"
	EntityPost Entity = "post"
)

// Op is the mutation that happened.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// RootPath is the listing path every mutation invalidates.
const RootPath = "/"

// Event 数据变更事件
type Event struct {
	Entity Entity
	Op     Op
	ID     int64
	Path   string
	At     time.Time
}

// Changed builds an event for the root listing path.
func Changed(entity Entity, op Op, id int64) Event {
	return Event{Entity: entity, Op: op, ID: id, Path: RootPath, At: time.Now()}
}

// Publisher accepts events. Publish never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// Nop returns a Publisher that drops every event.
func Nop() Publisher { return nopPublisher{} }

// Sync runs h inline on the caller's context, then hands e to next.
func Sync(h Handler, next Publisher) Publisher {
	if next == nil {
		next = Nop()
	}
	return &syncPublisher{h: h, next: next}
}

type syncPublisher struct {
	h    Handler
	next Publisher
}

func (p *syncPublisher) Publish(ctx context.Context, e Event) {
	if err := p.h(ctx, e); err != nil {
		logger.Warn("sync event handler failed",
			zap.String("entity", string(e.Entity)),
			zap.String("op", string(e.Op)),
			zap.String("path", e.Path),
			zap.Error(err),
		)
	}
	p.next.Publish(ctx, e)
}
