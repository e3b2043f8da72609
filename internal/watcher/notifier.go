package watcher

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/internal/fork"
	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Event types published by the watcher.
const (
	EventNewHeads = "new_heads"
	EventFork     = "fork"
)

// Notifier receives the chain changes observed by the watcher.
type Notifier interface {
	// NewHeads is called when the trunk was extended by heads, oldest first.
	NewHeads(ctx context.Context, heads []*thor.BlockHeader) error
	// Fork is called when the trunk switched to another branch.
	Fork(ctx context.Context, f *fork.Fork) error
}

// Head is the summary of a block carried by events.
type Head struct {
	Number    uint32      `json:"number"`
	ID        common.Hash `json:"id"`
	ParentID  common.Hash `json:"parent_id"`
	Timestamp uint64      `json:"timestamp"`
}

// Event is the serialized form of a notification.
type Event struct {
	Type     string    `json:"type"`
	Heads    []Head    `json:"heads,omitempty"`
	Ancestor *Head     `json:"ancestor,omitempty"`
	Trunk    []Head    `json:"trunk,omitempty"`
	Branch   []Head    `json:"branch,omitempty"`
	Time     time.Time `json:"time"`
}

func toHead(h *thor.BlockHeader) Head {
	return Head{
		Number:    h.Number,
		ID:        h.ID,
		ParentID:  h.ParentID,
		Timestamp: h.Timestamp,
	}
}

func toHeads(headers []*thor.BlockHeader) []Head {
	heads := make([]Head, 0, len(headers))
	for _, h := range headers {
		heads = append(heads, toHead(h))
	}
	return heads
}

// NewHeadsEvent builds the event of a trunk extension.
func NewHeadsEvent(heads []*thor.BlockHeader) *Event {
	return &Event{
		Type:  EventNewHeads,
		Heads: toHeads(heads),
		Time:  time.Now().UTC(),
	}
}

// NewForkEvent builds the event of a branch switch.
func NewForkEvent(f *fork.Fork) *Event {
	ancestor := toHead(f.Ancestor)
	return &Event{
		Type:     EventFork,
		Ancestor: &ancestor,
		Trunk:    toHeads(f.Trunk),
		Branch:   toHeads(f.Branch),
		Time:     time.Now().UTC(),
	}
}

// LogNotifier logs every notification.
type LogNotifier struct {
	log *logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier writing to log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NewHeads implements Notifier.
func (n *LogNotifier) NewHeads(_ context.Context, heads []*thor.BlockHeader) error {
	last := heads[len(heads)-1]
	n.log.Infow("new heads",
		"count", len(heads),
		"number", last.Number,
		"id", last.ID.Hex(),
	)
	return nil
}

// Fork implements Notifier.
func (n *LogNotifier) Fork(_ context.Context, f *fork.Fork) error {
	n.log.Warnw("fork",
		"ancestor", f.Ancestor.Number,
		"ancestor_id", f.Ancestor.ID.Hex(),
		"trunk", len(f.Trunk),
		"branch", len(f.Branch),
	)
	return nil
}

// MetricsNotifier exports notifications as Prometheus metrics.
type MetricsNotifier struct{}

var _ Notifier = MetricsNotifier{}

// NewHeads implements Notifier.
func (MetricsNotifier) NewHeads(_ context.Context, heads []*thor.BlockHeader) error {
	NewHeadsLog(heads[len(heads)-1].Number, len(heads))
	return nil
}

// Fork implements Notifier.
func (MetricsNotifier) Fork(_ context.Context, f *fork.Fork) error {
	best := f.Ancestor.Number
	if len(f.Trunk) > 0 {
		best = f.Trunk[len(f.Trunk)-1].Number
	}
	ForkLog(best, len(f.Branch))
	return nil
}
