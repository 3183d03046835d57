package treasury_test

import (
	"testing"
	"treasury-node/lib/logger"
	"treasury-node/lib/test_utils"
	"treasury-node/modules/config"
	"treasury-node/modules/events"
	"treasury-node/modules/treasury"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
)

type fixture struct {
	actions    *test_utils.MockActions
	proposals  *test_utils.MockProposals
	members    *test_utils.MockMembers
	governance *test_utils.MockGovernance
	dispatcher *test_utils.MockDispatcher
	bus        *events.Bus
	ts         treasury.TreasurySystem
}

func newFixture(t *testing.T, genesis treasury.GenesisConfig) *fixture {
	f := &fixture{
		actions:    test_utils.NewMockActions(),
		proposals:  test_utils.NewMockProposals(),
		members:    test_utils.NewMockMembers(),
		governance: test_utils.NewMockGovernance(),
		dispatcher: &test_utils.MockDispatcher{},
		bus:        events.New(),
	}

	dir := t.TempDir()
	genesisConf := config.New(genesis, &dir)
	assert.NoError(t, genesisConf.Init())

	f.ts = treasury.New(
		f.actions,
		f.proposals,
		f.members,
		f.governance,
		f.dispatcher,
		f.bus,
		genesisConf,
		logger.PrefixedLogger{Prefix: "treasury-test"},
	)
	assert.NoError(t, f.ts.Init())
	return f
}

func countGenesis(members []string, threshold uint64) treasury.GenesisConfig {
	return treasury.GenesisConfig{
		Members:                members,
		CountThreshold:         threshold,
		WeightThresholdPercent: 50,
		Mode:                   treasury.ModeCount,
	}
}

func weightGenesis(members []string, percent uint64) treasury.GenesisConfig {
	return treasury.GenesisConfig{
		Members:                members,
		CountThreshold:         1,
		WeightThresholdPercent: percent,
		Mode:                   treasury.ModeWeight,
	}
}

func TestGenesisValidation(t *testing.T) {
	newInvalid := func(genesis treasury.GenesisConfig) error {
		dir := t.TempDir()
		genesisConf := config.New(genesis, &dir)
		assert.NoError(t, genesisConf.Init())
		ts := treasury.New(
			test_utils.NewMockActions(), test_utils.NewMockProposals(),
			test_utils.NewMockMembers(), test_utils.NewMockGovernance(),
			&test_utils.MockDispatcher{}, events.New(), genesisConf,
			logger.PrefixedLogger{Prefix: "treasury-test"},
		)
		return ts.Init()
	}

	err := newInvalid(countGenesis([]string{}, 1))
	assert.ErrorIs(t, err, treasury.ErrInvalidConfig)

	err = newInvalid(countGenesis([]string{"a", "a"}, 1))
	assert.ErrorIs(t, err, treasury.ErrInvalidConfig)

	err = newInvalid(treasury.GenesisConfig{
		Members:                []string{"a"},
		WeightThresholdPercent: 101,
		Mode:                   treasury.ModeWeight,
	})
	assert.ErrorIs(t, err, treasury.ErrInvalidConfig)

	err = newInvalid(treasury.GenesisConfig{
		Members: []string{"a"},
		Mode:    "plurality",
	})
	assert.ErrorIs(t, err, treasury.ErrInvalidConfig)
}

func TestDepositAccounting(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 2))

	assert.NoError(t, f.ts.Deposit("a", 100))
	assert.NoError(t, f.ts.Deposit("b", 50))
	assert.NoError(t, f.ts.Deposit("a", 25))

	assert.Equal(t, uint64(125), f.ts.ContributionOf("a"))
	assert.Equal(t, uint64(50), f.ts.ContributionOf("b"))
	assert.Equal(t, uint64(175), f.ts.TotalWeight())
	assert.Equal(t, uint64(175), f.ts.GetBalance())

	// non-member deposits are accepted as funds but carry no weight
	assert.NoError(t, f.ts.Deposit("outsider", 500))
	assert.Equal(t, uint64(0), f.ts.ContributionOf("outsider"))
	assert.Equal(t, uint64(175), f.ts.TotalWeight())
	assert.Equal(t, uint64(675), f.ts.GetBalance())
}

func TestDepositOverflow(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))

	assert.NoError(t, f.ts.Deposit("a", ^uint64(0)))
	err := f.ts.Deposit("a", 1)
	assert.ErrorIs(t, err, treasury.ErrArithmeticOverflow)

	// failed deposit leaves everything untouched
	assert.Equal(t, ^uint64(0), f.ts.GetBalance())
	assert.Equal(t, ^uint64(0), f.ts.ContributionOf("a"))
}

func TestDepositEmitsNotification(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))

	ch, unsubscribe := f.bus.Subscribe(8)
	defer unsubscribe()

	assert.NoError(t, f.ts.Deposit("a", 42))

	ev := <-ch
	assert.Equal(t, events.KindDeposit, ev.Kind)
	assert.Equal(t, "a", ev.Account)
	assert.Equal(t, uint64(42), ev.Amount)
	assert.Equal(t, uint64(42), ev.Balance)
}

func TestSubmitActionRequiresMembership(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))

	_, err := f.ts.SubmitAction("outsider", "x", 1, nil)
	assert.ErrorIs(t, err, treasury.ErrUnauthorized)
}

func TestApproveRevokeInverse(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 2))
	assert.NoError(t, f.ts.Deposit("a", 10))

	id, err := f.ts.SubmitAction("a", "x", 5, nil)
	assert.NoError(t, err)

	assert.NoError(t, f.ts.ApproveAction(id, "a"))

	record, _ := f.ts.GetAction(id)
	assert.Equal(t, uint64(1), record.Approvals.Count)
	assert.Equal(t, uint64(10), record.Approvals.Weight)

	// a later deposit must not change the weight already captured, nor what
	// a revoke refunds
	assert.NoError(t, f.ts.Deposit("a", 90))
	record, _ = f.ts.GetAction(id)
	assert.Equal(t, uint64(10), record.Approvals.Weight)

	assert.NoError(t, f.ts.RevokeActionApproval(id, "a"))
	record, _ = f.ts.GetAction(id)
	assert.Equal(t, uint64(0), record.Approvals.Count)
	assert.Equal(t, uint64(0), record.Approvals.Weight)

	// and the member can approve again, now at the new weight
	assert.NoError(t, f.ts.ApproveAction(id, "a"))
	record, _ = f.ts.GetAction(id)
	assert.Equal(t, uint64(1), record.Approvals.Count)
	assert.Equal(t, uint64(100), record.Approvals.Weight)
}

func TestProposalApproveRevokeInverse(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 2))
	assert.NoError(t, f.ts.Deposit("a", 10))

	id, err := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:   treasury.KindAddMember,
		Member: optional.Some("e"),
	})
	assert.NoError(t, err)

	ch, unsubscribe := f.bus.Subscribe(8)
	defer unsubscribe()

	assert.NoError(t, f.ts.ApproveProposal(id, "a"))

	record, _ := f.ts.GetProposal(id)
	assert.Equal(t, uint64(1), record.Approvals.Count)
	assert.Equal(t, uint64(10), record.Approvals.Weight)

	assert.NoError(t, f.ts.RevokeProposalApproval(id, "a"))
	record, _ = f.ts.GetProposal(id)
	assert.Equal(t, uint64(0), record.Approvals.Count)
	assert.Equal(t, uint64(0), record.Approvals.Weight)
	assert.NotContains(t, record.Approvals.ApprovedBy, "a")

	assert.ErrorIs(t, f.ts.RevokeProposalApproval(id, "a"), treasury.ErrNotApproved)

	// revocation captured-weight refund: a deposit between approve and revoke
	// changes nothing already tallied, and re-approval picks up the new weight
	assert.NoError(t, f.ts.Deposit("a", 90))
	assert.NoError(t, f.ts.ApproveProposal(id, "a"))
	record, _ = f.ts.GetProposal(id)
	assert.Equal(t, uint64(1), record.Approvals.Count)
	assert.Equal(t, uint64(100), record.Approvals.Weight)

	ev := <-ch
	assert.Equal(t, events.KindProposalApproved, ev.Kind)
	assert.Equal(t, "a", ev.Account)
	assert.Equal(t, id, ev.Index)
	ev = <-ch
	assert.Equal(t, events.KindProposalRevoked, ev.Kind)
	assert.Equal(t, "a", ev.Account)
	assert.Equal(t, id, ev.Index)
}

func TestApprovalGuards(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 1))

	id, _ := f.ts.SubmitAction("a", "x", 0, nil)

	assert.ErrorIs(t, f.ts.ApproveAction(id, "outsider"), treasury.ErrNotMember)
	assert.ErrorIs(t, f.ts.RevokeActionApproval(id, "a"), treasury.ErrNotApproved)

	assert.NoError(t, f.ts.ApproveAction(id, "a"))
	assert.ErrorIs(t, f.ts.ApproveAction(id, "a"), treasury.ErrAlreadyApproved)

	assert.ErrorIs(t, f.ts.ApproveAction(99, "a"), treasury.ErrNotFound)
	assert.ErrorIs(t, f.ts.ExecuteAction(99, "a"), treasury.ErrNotFound)
}

func TestCountQuorumScenario(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b", "c", "d"}, 2))
	assert.NoError(t, f.ts.Deposit("a", 1000))

	id, err := f.ts.SubmitAction("a", "X", 100, []byte("payload"))
	assert.NoError(t, err)

	assert.NoError(t, f.ts.ApproveAction(id, "a"))
	assert.ErrorIs(t, f.ts.ExecuteAction(id, "a"), treasury.ErrQuorumNotMet)

	assert.NoError(t, f.ts.ApproveAction(id, "c"))
	assert.NoError(t, f.ts.ExecuteAction(id, "a"))

	record, _ := f.ts.GetAction(id)
	assert.True(t, record.Executed)
	assert.Len(t, f.dispatcher.Calls, 1)
	assert.Equal(t, "X", f.dispatcher.Calls[0].Target)
	assert.Equal(t, uint64(100), f.dispatcher.Calls[0].Value)

	// the disbursement left the pool
	assert.Equal(t, uint64(900), f.ts.GetBalance())
}

func TestWeightQuorumScenario(t *testing.T) {
	f := newFixture(t, weightGenesis([]string{"a", "b"}, 50))

	assert.NoError(t, f.ts.Deposit("a", 1))
	assert.NoError(t, f.ts.Deposit("b", 1))
	assert.Equal(t, uint64(2), f.ts.TotalWeight())

	id, _ := f.ts.SubmitAction("a", "X", 1, nil)

	assert.NoError(t, f.ts.ApproveAction(id, "a"))
	// 1 > 2*50/100 == 1 is false under the strict test
	assert.ErrorIs(t, f.ts.ExecuteAction(id, "a"), treasury.ErrQuorumNotMet)

	assert.NoError(t, f.ts.ApproveAction(id, "b"))
	assert.NoError(t, f.ts.ExecuteAction(id, "a"))

	record, _ := f.ts.GetAction(id)
	assert.True(t, record.Executed)
}

func TestExecuteExactlyOnce(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 1))
	assert.NoError(t, f.ts.Deposit("a", 10))

	id, _ := f.ts.SubmitAction("a", "X", 1, nil)
	assert.NoError(t, f.ts.ApproveAction(id, "a"))
	assert.NoError(t, f.ts.ExecuteAction(id, "a"))

	before, _ := f.ts.GetAction(id)
	balanceBefore := f.ts.GetBalance()

	assert.ErrorIs(t, f.ts.ExecuteAction(id, "b"), treasury.ErrAlreadyExecuted)
	assert.ErrorIs(t, f.ts.ApproveAction(id, "b"), treasury.ErrAlreadyExecuted)
	assert.ErrorIs(t, f.ts.RevokeActionApproval(id, "a"), treasury.ErrAlreadyExecuted)

	after, _ := f.ts.GetAction(id)
	assert.Equal(t, before, after)
	assert.Equal(t, balanceBefore, f.ts.GetBalance())
	assert.Len(t, f.dispatcher.Calls, 1)
}

func TestEffectFailureRollsBack(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))
	assert.NoError(t, f.ts.Deposit("a", 10))

	id, _ := f.ts.SubmitAction("a", "X", 1, nil)
	assert.NoError(t, f.ts.ApproveAction(id, "a"))

	f.dispatcher.Fail = true
	err := f.ts.ExecuteAction(id, "a")
	assert.ErrorIs(t, err, treasury.ErrEffectDispatchFailed)

	record, _ := f.ts.GetAction(id)
	assert.False(t, record.Executed)
	assert.Equal(t, uint64(10), f.ts.GetBalance())

	// retry succeeds once the effect target recovers
	f.dispatcher.Fail = false
	assert.NoError(t, f.ts.ExecuteAction(id, "a"))
	record, _ = f.ts.GetAction(id)
	assert.True(t, record.Executed)
	assert.Equal(t, uint64(9), f.ts.GetBalance())
}

func TestInsufficientBalanceFailsDispatch(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))
	assert.NoError(t, f.ts.Deposit("a", 5))

	id, _ := f.ts.SubmitAction("a", "X", 50, nil)
	assert.NoError(t, f.ts.ApproveAction(id, "a"))

	err := f.ts.ExecuteAction(id, "a")
	assert.ErrorIs(t, err, treasury.ErrEffectDispatchFailed)

	record, _ := f.ts.GetAction(id)
	assert.False(t, record.Executed)
	// the external target was never invoked
	assert.Len(t, f.dispatcher.Calls, 0)
}

func TestAddMemberProposalScenario(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b", "c"}, 2))

	id, err := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:   treasury.KindAddMember,
		Member: optional.Some("e"),
	})
	assert.NoError(t, err)

	assert.NoError(t, f.ts.ApproveProposal(id, "a"))
	assert.ErrorIs(t, f.ts.ExecuteProposal(id, "a"), treasury.ErrQuorumNotMet)

	assert.NoError(t, f.ts.ApproveProposal(id, "b"))
	assert.NoError(t, f.ts.ExecuteProposal(id, "a"))

	assert.True(t, f.ts.IsMember("e"))
	assert.Equal(t, []string{"a", "b", "c", "e"}, f.ts.GetMembers())
}

func TestDuplicateAddMemberExecuteFails(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 1))

	id, _ := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:   treasury.KindAddMember,
		Member: optional.Some("b"),
	})
	assert.NoError(t, f.ts.ApproveProposal(id, "a"))

	err := f.ts.ExecuteProposal(id, "a")
	assert.ErrorIs(t, err, treasury.ErrDuplicateMember)

	// the proposal stays unexecuted; retry is the caller's call
	record, _ := f.ts.GetProposal(id)
	assert.False(t, record.Executed)
}

func TestRemoveMemberProposal(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b", "c"}, 1))
	assert.NoError(t, f.ts.Deposit("b", 30))

	// an executed action keeps b's tallied approval after b is removed
	actionId, _ := f.ts.SubmitAction("a", "X", 0, nil)
	assert.NoError(t, f.ts.ApproveAction(actionId, "b"))
	assert.NoError(t, f.ts.ExecuteAction(actionId, "a"))

	id, _ := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:   treasury.KindRemoveMember,
		Member: optional.Some("b"),
	})
	assert.NoError(t, f.ts.ApproveProposal(id, "a"))
	assert.NoError(t, f.ts.ExecuteProposal(id, "a"))

	assert.False(t, f.ts.IsMember("b"))
	assert.Equal(t, []string{"a", "c"}, f.ts.GetMembers())

	// prior contributions and tallies survive the removal
	assert.Equal(t, uint64(30), f.ts.ContributionOf("b"))
	assert.Equal(t, uint64(30), f.ts.TotalWeight())
	executed, _ := f.ts.GetAction(actionId)
	assert.Equal(t, uint64(1), executed.Approvals.Count)
	assert.Equal(t, uint64(30), executed.Approvals.Weight)

	// removing an absent member fails and leaves the proposal pending
	id2, _ := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:   treasury.KindRemoveMember,
		Member: optional.Some("b"),
	})
	assert.NoError(t, f.ts.ApproveProposal(id2, "a"))
	assert.ErrorIs(t, f.ts.ExecuteProposal(id2, "a"), treasury.ErrNotMember)
	record, _ := f.ts.GetProposal(id2)
	assert.False(t, record.Executed)
}

func TestChangeParametersSkipsValidation(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b"}, 1))

	// construction-time bounds are not re-applied at execution: 150% sticks
	id, _ := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:                      treasury.KindChangeParameters,
		NewCountThreshold:         optional.Some(uint64(3)),
		NewWeightThresholdPercent: optional.Some(uint64(150)),
		NewMode:                   optional.Some(treasury.ModeWeight),
	})
	assert.NoError(t, f.ts.ApproveProposal(id, "a"))
	assert.NoError(t, f.ts.ExecuteProposal(id, "a"))

	conf := f.ts.Quorum()
	assert.Equal(t, uint64(3), conf.CountThreshold)
	assert.Equal(t, uint64(150), conf.WeightThresholdPercent)
	assert.Equal(t, treasury.ModeWeight, conf.Mode)
}

func TestQuorumEvaluatedAgainstCurrentConfig(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b", "c"}, 3))
	assert.NoError(t, f.ts.Deposit("a", 10))

	// submitted under countThreshold=3, one approval is not enough
	actionId, _ := f.ts.SubmitAction("a", "X", 1, nil)
	assert.NoError(t, f.ts.ApproveAction(actionId, "a"))
	assert.ErrorIs(t, f.ts.ExecuteAction(actionId, "a"), treasury.ErrQuorumNotMet)

	// lower the threshold through governance; the old record is judged under
	// the new configuration
	propId, _ := f.ts.SubmitProposal("a", treasury.ProposalParams{
		Kind:                      treasury.KindChangeParameters,
		NewCountThreshold:         optional.Some(uint64(1)),
		NewWeightThresholdPercent: optional.Some(uint64(50)),
		NewMode:                   optional.Some(treasury.ModeCount),
	})
	assert.NoError(t, f.ts.ApproveProposal(propId, "a"))
	assert.NoError(t, f.ts.ApproveProposal(propId, "b"))
	assert.NoError(t, f.ts.ApproveProposal(propId, "c"))
	assert.NoError(t, f.ts.ExecuteProposal(propId, "a"))

	assert.NoError(t, f.ts.ExecuteAction(actionId, "a"))
}

func TestRecordSnapshotsAreCopies(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))

	id, _ := f.ts.SubmitAction("a", "X", 0, []byte{1, 2, 3})
	assert.NoError(t, f.ts.ApproveAction(id, "a"))

	record, _ := f.ts.GetAction(id)
	record.Data[0] = 99
	record.Approvals.ApprovedBy["mallory"] = 1000

	fresh, _ := f.ts.GetAction(id)
	assert.Equal(t, []byte{1, 2, 3}, fresh.Data)
	assert.NotContains(t, fresh.Approvals.ApprovedBy, "mallory")
}

func TestStateReload(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a", "b", "c"}, 2))

	assert.NoError(t, f.ts.Deposit("a", 100))
	assert.NoError(t, f.ts.Deposit("b", 40))

	actionId, _ := f.ts.SubmitAction("a", "X", 10, []byte("wire"))
	assert.NoError(t, f.ts.ApproveAction(actionId, "a"))

	propId, _ := f.ts.SubmitProposal("b", treasury.ProposalParams{
		Kind:   treasury.KindRemoveMember,
		Member: optional.Some("c"),
	})
	assert.NoError(t, f.ts.ApproveProposal(propId, "a"))
	assert.NoError(t, f.ts.ApproveProposal(propId, "b"))
	assert.NoError(t, f.ts.ExecuteProposal(propId, "a"))

	// a second engine over the same stores rebuilds the identical aggregate
	dir := t.TempDir()
	genesisConf := config.New(countGenesis([]string{"ignored"}, 9), &dir)
	assert.NoError(t, genesisConf.Init())

	reloaded := treasury.New(
		f.actions, f.proposals, f.members, f.governance,
		f.dispatcher, events.New(), genesisConf,
		logger.PrefixedLogger{Prefix: "treasury-reload"},
	)
	assert.NoError(t, reloaded.Init())

	assert.Equal(t, f.ts.GetMembers(), reloaded.GetMembers())
	assert.Equal(t, f.ts.GetBalance(), reloaded.GetBalance())
	assert.Equal(t, f.ts.TotalWeight(), reloaded.TotalWeight())
	assert.Equal(t, f.ts.Quorum(), reloaded.Quorum())
	assert.Equal(t, f.ts.GetActionCount(), reloaded.GetActionCount())
	assert.Equal(t, f.ts.GetProposalCount(), reloaded.GetProposalCount())

	original, _ := f.ts.GetAction(actionId)
	restored, _ := reloaded.GetAction(actionId)
	assert.Equal(t, original, restored)

	// approvals picked up where they left off
	assert.NoError(t, reloaded.ApproveAction(actionId, "b"))
	assert.NoError(t, reloaded.ExecuteAction(actionId, "a"))
}

func TestPendingRecords(t *testing.T) {
	f := newFixture(t, countGenesis([]string{"a"}, 1))
	assert.NoError(t, f.ts.Deposit("a", 10))

	first, _ := f.ts.SubmitAction("a", "X", 1, nil)
	second, _ := f.ts.SubmitAction("a", "Y", 1, nil)

	assert.NoError(t, f.ts.ApproveAction(first, "a"))
	assert.NoError(t, f.ts.ExecuteAction(first, "a"))

	pending := f.ts.PendingActions()
	assert.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].Index)
}
