package events

import (
	"sync"
	"treasury-node/lib/utils"
	a "treasury-node/modules/aggregate"

	"github.com/chebyrash/promise"
)

type Kind string

const (
	KindDeposit           Kind = "deposit"
	KindActionSubmitted   Kind = "action_submitted"
	KindActionApproved    Kind = "action_approved"
	KindActionRevoked     Kind = "action_revoked"
	KindActionExecuted    Kind = "action_executed"
	KindProposalSubmitted Kind = "proposal_submitted"
	KindProposalApproved  Kind = "proposal_approved"
	KindProposalRevoked   Kind = "proposal_revoked"
	KindProposalExecuted  Kind = "proposal_executed"
)

// Event is one observable side effect of a treasury operation. Account is the
// actor (sender, approver, executor). Index and Cid identify the record for
// record scoped events. Amount and Balance are set for deposits only.
type Event struct {
	Kind    Kind   `json:"kind"`
	Account string `json:"account"`
	Index   uint64 `json:"index,omitempty"`
	Cid     string `json:"cid,omitempty"`
	Amount  uint64 `json:"amount,omitempty"`
	Balance uint64 `json:"balance,omitempty"`
}

// Bus is an in-process publish/subscribe fanout. Publishing never blocks;
// a subscriber that stops draining its channel misses events.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

var _ a.Plugin = &Bus{}

func New() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Init implements aggregate.Plugin.
func (b *Bus) Init() error {
	return nil
}

// Start implements aggregate.Plugin.
func (b *Bus) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

// Stop implements aggregate.Plugin.
func (b *Bus) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub)
	}
	return nil
}
