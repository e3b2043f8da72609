// Package reconcile restores the execution order of the events and transfers of a clause
// by walking its call trace.
package reconcile

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
)

// Kind tells events and transfers apart.
type Kind int

const (
	KindEvent Kind = iota
	KindTransfer
)

func (k Kind) String() string {
	if k == KindTransfer {
		return "transfer"
	}
	return "event"
}

// Item is one output of a clause at its execution position.
type Item struct {
	Kind Kind
	// OverallIndex is the position among all events and transfers of the clause.
	OverallIndex int
	// Index is the position in the events or transfers array, depending on Kind.
	Index    int
	Event    *thor.Event
	Transfer *thor.Transfer
}

type frame struct {
	node   *thor.CallTrace
	acting common.Address
	next   int
}

// Sequence yields the items of a clause in execution order. It is consumed once:
//
//	seq := reconcile.New(trace, output.Events, output.Transfers)
//	for seq.Next() {
//		item := seq.Item()
//	}
//	if err := seq.Err(); err != nil { ... }
type Sequence struct {
	root      *thor.CallTrace
	events    []thor.Event
	transfers []thor.Transfer

	stack   []frame
	queue   []Item
	started bool
	done    bool

	eventIdx    int
	transferIdx int
	overall     int

	item Item
	err  error
}

// New creates a sequence over the outputs of the clause traced by trace.
func New(trace *thor.CallTrace, events []thor.Event, transfers []thor.Transfer) *Sequence {
	return &Sequence{
		root:      trace,
		events:    events,
		transfers: transfers,
	}
}

// Next advances to the next item. It returns false when the walk is over or failed.
func (s *Sequence) Next() bool {
	for {
		if len(s.queue) > 0 {
			s.item = s.queue[0]
			s.queue = s.queue[1:]
			return true
		}
		if s.err != nil || s.done {
			return false
		}
		s.step()
	}
}

// Item returns the current item.
func (s *Sequence) Item() Item {
	return s.item
}

// Err returns the error that stopped the walk, if any.
func (s *Sequence) Err() error {
	return s.err
}

// All returns every item of the clause in execution order.
func All(trace *thor.CallTrace, events []thor.Event, transfers []thor.Transfer) ([]Item, error) {
	seq := New(trace, events, transfers)

	items := make([]Item, 0, len(events)+len(transfers))
	for seq.Next() {
		items = append(items, seq.Item())
	}

	return items, seq.Err()
}

// ArrayOrder lists events then transfers in array order. Indexers use it when
// the trace cannot be reconciled and strict ordering is not required.
func ArrayOrder(events []thor.Event, transfers []thor.Transfer) []Item {
	items := make([]Item, 0, len(events)+len(transfers))
	for i := range events {
		items = append(items, Item{Kind: KindEvent, OverallIndex: len(items), Index: i, Event: &events[i]})
	}
	for i := range transfers {
		items = append(items, Item{Kind: KindTransfer, OverallIndex: len(items), Index: i, Transfer: &transfers[i]})
	}
	return items
}

func (s *Sequence) step() {
	if !s.started {
		s.started = true
		if s.root != nil {
			s.enter(s.root)
		}
		return
	}

	if len(s.stack) == 0 {
		s.done = true
		if s.eventIdx != len(s.events) || s.transferIdx != len(s.transfers) {
			s.err = NewIndexMismatchError(len(s.events), s.eventIdx, len(s.transfers), s.transferIdx)
		}
		return
	}

	top := &s.stack[len(s.stack)-1]
	if top.next < len(top.node.Calls) {
		child := top.node.Calls[top.next]
		top.next++
		// events logged by the frame since its previous child returned
		s.drain(top.acting)
		s.enter(child)
		return
	}

	// events logged by the frame after its children returned
	s.drain(top.acting)
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *Sequence) enter(node *thor.CallTrace) {
	var acting common.Address

	switch node.Type {
	case thor.CallTypeCreate, thor.CallTypeCreate2:
		if node.Error != "" {
			return
		}
		if !s.matchTransfer(node) {
			return
		}
		if !s.matchMaster(node) {
			return
		}
		acting = node.To

	case thor.CallTypeCall:
		if node.Error != "" {
			return
		}
		if !s.matchTransfer(node) {
			return
		}
		acting = node.To
		if node.To == thor.PrototypeAddress {
			if self, ok := prototypeSelf(node.Input); ok {
				acting = self
			}
		}

	case thor.CallTypeCallCode, thor.CallTypeDelegateCall:
		if node.Error != "" {
			return
		}
		acting = node.From

	case thor.CallTypeStaticCall:
		return

	default:
		s.err = NewUnknownNodeError(node.Type)
		return
	}

	s.drain(acting)
	s.stack = append(s.stack, frame{node: node, acting: acting})
}

func (s *Sequence) matchTransfer(node *thor.CallTrace) bool {
	if !node.HasValue() {
		return true
	}

	if s.transferIdx >= len(s.transfers) {
		s.err = NewMismatchError(node.Type, KindTransfer, s.transferIdx, "no transfer left")
		return false
	}

	tr := &s.transfers[s.transferIdx]
	if tr.Sender != node.From || tr.Recipient != node.To || tr.Amount == nil ||
		tr.Amount.ToInt().Cmp(node.Value.ToInt()) != 0 {
		s.err = NewMismatchError(node.Type, KindTransfer, s.transferIdx,
			fmt.Sprintf("want %s -> %s of %s", node.From.Hex(), node.To.Hex(), node.Value.ToInt()))
		return false
	}

	s.emit(Item{Kind: KindTransfer, Index: s.transferIdx, Transfer: tr})
	s.transferIdx++

	return true
}

func (s *Sequence) matchMaster(node *thor.CallTrace) bool {
	if s.eventIdx >= len(s.events) {
		s.err = NewMismatchError(node.Type, KindEvent, s.eventIdx, "no $Master event left")
		return false
	}

	ev := &s.events[s.eventIdx]
	if ev.Address != node.To || len(ev.Topics) == 0 || ev.Topics[0] != MasterTopic {
		s.err = NewMismatchError(node.Type, KindEvent, s.eventIdx,
			fmt.Sprintf("want $Master event of %s", node.To.Hex()))
		return false
	}

	if master, ok := decodeMaster(ev.Data); !ok || master != node.From {
		s.err = NewMismatchError(node.Type, KindEvent, s.eventIdx,
			fmt.Sprintf("want $Master naming %s", node.From.Hex()))
		return false
	}

	s.emit(Item{Kind: KindEvent, Index: s.eventIdx, Event: ev})
	s.eventIdx++

	return true
}

// drain emits the consecutive unconsumed events logged by addr.
func (s *Sequence) drain(addr common.Address) {
	for s.eventIdx < len(s.events) && s.events[s.eventIdx].Address == addr {
		s.emit(Item{Kind: KindEvent, Index: s.eventIdx, Event: &s.events[s.eventIdx]})
		s.eventIdx++
	}
}

func (s *Sequence) emit(item Item) {
	item.OverallIndex = s.overall
	s.overall++
	s.queue = append(s.queue, item)
}
