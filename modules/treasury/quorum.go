package treasury

import "math/big"

// QuorumPasses is the pure pass/fail decision, evaluated against whatever
// configuration is active when execute is called.
//
// Count mode is inclusive (count >= threshold) while weight mode is strict
// (weight > totalWeight*percent/100, integer division truncating toward
// zero). The asymmetry is intentional; callers must not paper over it.
func QuorumPasses(approvals ApprovalState, totalWeight uint64, conf QuorumConfig) bool {
	if conf.Mode == ModeWeight {
		threshold := new(big.Int).Mul(
			new(big.Int).SetUint64(totalWeight),
			new(big.Int).SetUint64(conf.WeightThresholdPercent),
		)
		threshold.Div(threshold, big.NewInt(100))
		return new(big.Int).SetUint64(approvals.Weight).Cmp(threshold) > 0
	}

	return approvals.Count >= conf.CountThreshold
}
