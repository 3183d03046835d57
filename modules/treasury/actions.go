package treasury

import (
	"bytes"
	"errors"
	"fmt"
	"treasury-node/modules/common"
	"treasury-node/modules/events"
	"treasury-node/modules/treasury/effects"
)

// Deposit records funds from anyone. Only a current member's deposit counts
// toward their voting weight; everyone's deposit raises the pooled balance.
func (ts *treasurySystem) Deposit(from string, amount uint64) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if err := ts.state.deposit(from, amount); err != nil {
		return err
	}

	if ts.state.isMember(from) {
		ts.persistMember(from)
	}
	ts.persistGovernance()

	ts.bus.Publish(events.Event{
		Kind:    events.KindDeposit,
		Account: from,
		Amount:  amount,
		Balance: ts.state.balance,
	})
	return nil
}

func (ts *treasurySystem) SubmitAction(submitter string, target string, value uint64, data []byte) (uint64, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.state.isMember(submitter) {
		return 0, ErrUnauthorized
	}

	index := uint64(len(ts.state.actions))
	recordCid, err := common.RecordCid(map[string]interface{}{
		"index":     index,
		"submitter": submitter,
		"target":    target,
		"value":     value,
		"data":      data,
	})
	if err != nil {
		return 0, err
	}

	record := &ActionRecord{
		Index:     index,
		Cid:       recordCid.String(),
		Submitter: submitter,
		Target:    target,
		Value:     value,
		Data:      bytes.Clone(data),
		Approvals: newApprovalState(),
	}
	ts.state.actions = append(ts.state.actions, record)
	ts.persistAction(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindActionSubmitted,
		Account: submitter,
		Index:   index,
		Cid:     record.Cid,
	})
	return index, nil
}

func (ts *treasurySystem) ApproveAction(id uint64, voter string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findAction(id)
	if err != nil {
		return err
	}
	if err := ts.approve(&record.Approvals, record.Executed, voter); err != nil {
		return err
	}
	ts.persistAction(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindActionApproved,
		Account: voter,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

func (ts *treasurySystem) RevokeActionApproval(id uint64, voter string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findAction(id)
	if err != nil {
		return err
	}
	if err := ts.revoke(&record.Approvals, record.Executed, voter); err != nil {
		return err
	}
	ts.persistAction(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindActionRevoked,
		Account: voter,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

// ExecuteAction marks the record executed and dispatches the disbursement.
// The flag and the effect are inseparable: a failed dispatch rolls the flag
// back, leaving the record retryable under whatever quorum is active then.
func (ts *treasurySystem) ExecuteAction(id uint64, caller string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.state.isMember(caller) {
		return ErrUnauthorized
	}
	record, err := ts.findAction(id)
	if err != nil {
		return err
	}
	if record.Executed {
		return ErrAlreadyExecuted
	}
	if !QuorumPasses(record.Approvals, ts.state.totalWeight, ts.state.conf) {
		return ErrQuorumNotMet
	}

	record.Executed = true

	if record.Value > ts.state.balance {
		record.Executed = false
		return errors.Join(ErrEffectDispatchFailed,
			fmt.Errorf("insufficient balance: have %d, need %d", ts.state.balance, record.Value))
	}

	res := ts.dispatcher.Dispatch(effects.Disbursement{
		Index:  record.Index,
		Cid:    record.Cid,
		Target: record.Target,
		Value:  record.Value,
		Data:   record.Data,
	})
	if res.IsErr() {
		record.Executed = false
		return errors.Join(ErrEffectDispatchFailed, res.UnwrapErr())
	}

	ts.state.balance -= record.Value
	ts.persistAction(record)
	ts.persistGovernance()

	ts.bus.Publish(events.Event{
		Kind:    events.KindActionExecuted,
		Account: caller,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

func (ts *treasurySystem) findAction(id uint64) (*ActionRecord, error) {
	if id >= uint64(len(ts.state.actions)) {
		return nil, ErrNotFound
	}
	return ts.state.actions[id], nil
}
