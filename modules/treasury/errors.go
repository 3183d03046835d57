package treasury

import "errors"

// Every failed call surfaces exactly one of these, wrapped with call context
// where useful. Nothing is retried internally; the caller decides whether to
// resubmit or wait for more approvals.
var (
	ErrUnauthorized         = errors.New("caller is not a current member")
	ErrNotFound             = errors.New("record id out of range")
	ErrAlreadyExecuted      = errors.New("record already executed")
	ErrAlreadyApproved      = errors.New("voter already approved this record")
	ErrNotApproved          = errors.New("voter has not approved this record")
	ErrDuplicateMember      = errors.New("member already present")
	ErrNotMember            = errors.New("not a current member")
	ErrQuorumNotMet         = errors.New("quorum not met")
	ErrEffectDispatchFailed = errors.New("effect dispatch failed")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
	ErrInvalidConfig        = errors.New("invalid configuration")
)
