package treasury

import (
	"math"
	"treasury-node/lib/utils"
)

// treasuryState is the owned aggregate the engine mutates under its lock:
// the member set, the contribution ledger, the two append-only record logs
// and the active quorum configuration. Fresh instances per test keep the
// engine testable without ambient singletons.
type treasuryState struct {
	memberOrder []string
	members     map[string]struct{}

	// Contributions survive removal; only current members gain weight from
	// deposits, but a removed member's past contributions stay tallied.
	contributions map[string]uint64
	positions     map[string]uint64
	nextPosition  uint64

	totalWeight uint64
	balance     uint64

	conf QuorumConfig

	actions   []*ActionRecord
	proposals []*ProposalRecord
}

func newTreasuryState() *treasuryState {
	return &treasuryState{
		memberOrder:   make([]string, 0),
		members:       make(map[string]struct{}),
		contributions: make(map[string]uint64),
		positions:     make(map[string]uint64),
		actions:       make([]*ActionRecord, 0),
		proposals:     make([]*ProposalRecord, 0),
	}
}

func (st *treasuryState) isMember(account string) bool {
	_, ok := st.members[account]
	return ok
}

func (st *treasuryState) addMember(account string) error {
	if st.isMember(account) {
		return ErrDuplicateMember
	}

	st.members[account] = struct{}{}
	st.memberOrder = append(st.memberOrder, account)
	st.positions[account] = st.nextPosition
	st.nextPosition += 1

	return nil
}

func (st *treasuryState) removeMember(account string) error {
	if !st.isMember(account) {
		return ErrNotMember
	}

	delete(st.members, account)
	st.memberOrder = utils.Remove(st.memberOrder, account)

	return nil
}

// deposit records amount as received funds from anyone; it counts as voting
// weight only when the sender is a current member. All checks run before any
// mutation so a failed call leaves the state untouched.
func (st *treasuryState) deposit(from string, amount uint64) error {
	newBalance, err := checkedAdd(st.balance, amount)
	if err != nil {
		return err
	}

	if st.isMember(from) {
		newContribution, err := checkedAdd(st.contributions[from], amount)
		if err != nil {
			return err
		}
		newTotal, err := checkedAdd(st.totalWeight, amount)
		if err != nil {
			return err
		}
		st.contributions[from] = newContribution
		st.totalWeight = newTotal
	}

	st.balance = newBalance
	return nil
}

func checkedAdd(a uint64, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrArithmeticOverflow
	}
	return a + b, nil
}
