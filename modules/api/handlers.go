package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"treasury-node/modules/treasury"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// ===== request bodies =====

// Amount is a pointer so a zero-amount deposit still passes validation;
// only an absent field is rejected.
type depositRequest struct {
	From   string  `json:"from" validate:"required"`
	Amount *uint64 `json:"amount" validate:"required"`
}

type submitActionRequest struct {
	From   string `json:"from" validate:"required"`
	Target string `json:"target" validate:"required"`
	Value  uint64 `json:"value"`
	Data   string `json:"data"`
}

type recordRequest struct {
	From string  `json:"from" validate:"required"`
	Id   *uint64 `json:"id" validate:"required"`
}

type submitProposalRequest struct {
	From                      string  `json:"from" validate:"required"`
	Kind                      string  `json:"kind" validate:"required,oneof=add-member remove-member change-parameters"`
	Member                    *string `json:"member,omitempty"`
	NewCountThreshold         *uint64 `json:"new_count_threshold,omitempty"`
	NewWeightThresholdPercent *uint64 `json:"new_weight_threshold_percent,omitempty"`
	NewMode                   *string `json:"new_mode,omitempty"`
}

// ===== helpers =====

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return nil, false
	}
	if err := requestValidator.Struct(&body); err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	return &body, true
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeJson(w, statusForErr(err), map[string]string{"error": err.Error()})
}

func statusForErr(err error) int {
	switch {
	case errors.Is(err, treasury.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, treasury.ErrUnauthorized), errors.Is(err, treasury.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, treasury.ErrAlreadyExecuted),
		errors.Is(err, treasury.ErrAlreadyApproved),
		errors.Is(err, treasury.ErrNotApproved),
		errors.Is(err, treasury.ErrDuplicateMember):
		return http.StatusConflict
	case errors.Is(err, treasury.ErrQuorumNotMet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, treasury.ErrEffectDispatchFailed):
		return http.StatusBadGateway
	case errors.Is(err, treasury.ErrArithmeticOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryId(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid id"})
		return 0, false
	}
	return id, true
}

// ===== command handlers =====

func (am *apiManager) handleDeposit(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[depositRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.Deposit(body.From, *body.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]uint64{"balance": am.ts.GetBalance()})
}

func (am *apiManager) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[submitActionRequest](w, r)
	if !ok {
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "data must be base64"})
		return
	}
	index, err := am.ts.SubmitAction(body.From, body.Target, body.Value, data)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]uint64{"index": index})
}

func (am *apiManager) handleApproveAction(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[recordRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.ApproveAction(*body.Id, body.From); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (am *apiManager) handleRevokeAction(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[recordRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.RevokeActionApproval(*body.Id, body.From); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (am *apiManager) handleExecuteAction(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[recordRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.ExecuteAction(*body.Id, body.From); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"status": "executed"})
}

func (am *apiManager) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[submitProposalRequest](w, r)
	if !ok {
		return
	}
	params := treasury.ProposalParams{
		Kind:                      treasury.ProposalKind(body.Kind),
		Member:                    optional.FromNillable(body.Member),
		NewCountThreshold:         optional.FromNillable(body.NewCountThreshold),
		NewWeightThresholdPercent: optional.FromNillable(body.NewWeightThresholdPercent),
	}
	if body.NewMode != nil {
		params.NewMode = optional.Some(treasury.Mode(*body.NewMode))
	}
	index, err := am.ts.SubmitProposal(body.From, params)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]uint64{"index": index})
}

func (am *apiManager) handleApproveProposal(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[recordRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.ApproveProposal(*body.Id, body.From); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (am *apiManager) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody[recordRequest](w, r)
	if !ok {
		return
	}
	if err := am.ts.ExecuteProposal(*body.Id, body.From); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, map[string]string{"status": "executed"})
}

// ===== query handlers =====

func (am *apiManager) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string][]string{"members": am.ts.GetMembers()})
}

func (am *apiManager) handleGetAction(w http.ResponseWriter, r *http.Request) {
	id, ok := queryId(w, r)
	if !ok {
		return
	}
	record, err := am.ts.GetAction(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, record)
}

func (am *apiManager) handleGetActionCount(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]uint64{"count": am.ts.GetActionCount()})
}

func (am *apiManager) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := queryId(w, r)
	if !ok {
		return
	}
	record, err := am.ts.GetProposal(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJson(w, http.StatusOK, record)
}

func (am *apiManager) handleGetProposalCount(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]uint64{"count": am.ts.GetProposalCount()})
}

func (am *apiManager) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]uint64{
		"balance":      am.ts.GetBalance(),
		"total_weight": am.ts.TotalWeight(),
	})
}

func (am *apiManager) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeJson(w, http.StatusBadRequest, map[string]string{"error": "missing account"})
		return
	}
	writeJson(w, http.StatusOK, map[string]uint64{"contribution": am.ts.ContributionOf(account)})
}
