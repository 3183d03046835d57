package treasury_test

import (
	"testing"
	"treasury-node/modules/treasury"

	"github.com/stretchr/testify/assert"
)

func TestQuorumCountInclusive(t *testing.T) {
	conf := treasury.QuorumConfig{
		CountThreshold: 2,
		Mode:           treasury.ModeCount,
	}

	assert.False(t, treasury.QuorumPasses(treasury.ApprovalState{Count: 1}, 0, conf))
	// count mode passes at exactly the threshold
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{Count: 2}, 0, conf))
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{Count: 3}, 0, conf))
}

func TestQuorumWeightStrict(t *testing.T) {
	conf := treasury.QuorumConfig{
		WeightThresholdPercent: 50,
		Mode:                   treasury.ModeWeight,
	}

	// 1 > 2*50/100 == 1 is false: exactly the threshold does not pass
	assert.False(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 1}, 2, conf))
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 2}, 2, conf))
}

func TestQuorumWeightTruncation(t *testing.T) {
	conf := treasury.QuorumConfig{
		WeightThresholdPercent: 50,
		Mode:                   treasury.ModeWeight,
	}

	// 3*50/100 truncates to 1, so weight 2 passes
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 2}, 3, conf))
	assert.False(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 1}, 3, conf))
}

func TestQuorumWeightPercentAboveHundred(t *testing.T) {
	// change-parameters can push the percent out of range; the policy still
	// evaluates it mechanically
	conf := treasury.QuorumConfig{
		WeightThresholdPercent: 150,
		Mode:                   treasury.ModeWeight,
	}

	assert.False(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 100}, 100, conf))
	assert.False(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 150}, 100, conf))
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{Weight: 151}, 100, conf))
}

func TestQuorumZeroCountThreshold(t *testing.T) {
	conf := treasury.QuorumConfig{
		CountThreshold: 0,
		Mode:           treasury.ModeCount,
	}

	// a zero threshold passes with no approvals at all
	assert.True(t, treasury.QuorumPasses(treasury.ApprovalState{}, 0, conf))
}
