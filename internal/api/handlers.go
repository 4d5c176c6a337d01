// Package api exposes the ledger over a JSON REST surface.
//
// Mutating routes derive the acting account from the validated session
// token, never from the request body: the ledger's actor/payer/creator
// preconditions are only meaningful when the actor is a verified
// caller id.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/middleware"
	"github.com/splitpot/splitpot/internal/models"
)

// Handler holds the dependencies of every route.
type Handler struct {
	Ledger *ledger.Service
	Auth   *auth.Authenticator
	JWT    *auth.JWTManager
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(l *ledger.Service, a *auth.Authenticator, jwt *auth.JWTManager) *Handler {
	return &Handler{Ledger: l, Auth: a, JWT: jwt}
}

// --- auth ---

// SignUp creates a credential record, registers the new account in the
// directory, and returns a session token.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.Auth.SignUp(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Ledger.Register(r.Context(), user.Account, user.DisplayName); err != nil {
		writeError(w, err)
		return
	}

	h.writeSession(w, user)
}

// LogIn verifies credentials and returns a session token.
func (h *Handler) LogIn(w http.ResponseWriter, r *http.Request) {
	var req logInRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.Auth.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeSession(w, user)
}

func (h *Handler) writeSession(w http.ResponseWriter, user *models.User) {
	token, err := h.JWT.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Account: user.Account})
}

// --- directory ---

// Register updates the caller's display name (self-registration only:
// the account is taken from the session, so a caller can never register
// anyone else).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	account := middleware.Account(r.Context())
	if err := h.Ledger.Register(r.Context(), account, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUser returns an account's registration state and display name.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	account := models.Account(chi.URLParam(r, "account"))

	registered, err := h.Ledger.IsRegistered(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := h.Ledger.DisplayName(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Account:     account,
		Registered:  registered,
		DisplayName: name,
	})
}

// --- groups ---

// CreateGroup creates a group with the caller as creator.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !decode(w, r, &req) {
		return
	}

	creator := middleware.Account(r.Context())
	id, err := h.Ledger.CreateGroup(r.Context(), creator, req.Name, req.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGroupResponse{GroupID: id})
}

// GetGroup returns the raw group record.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	group, err := h.Ledger.Group(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GetGroupWithBalances returns the group joined with member names and
// balances.
func (h *Handler) GetGroupWithBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	view, err := h.Ledger.GroupWithBalances(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetGroupCount returns the total number of groups ever created.
func (h *Handler) GetGroupCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Ledger.GroupCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupCountResponse{Count: count})
}

// GetMyGroups returns the ids of every group the caller belongs to.
func (h *Handler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Ledger.GroupsForMember(r.Context(), middleware.Account(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberGroupsResponse{GroupIDs: ids})
}

// AddMember adds a registered account to the group, acting as the caller.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	var req addMemberRequest
	if !decode(w, r, &req) {
		return
	}

	actor := middleware.Account(r.Context())
	if err := h.Ledger.AddMember(r.Context(), actor, id, req.Account); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGroup deletes the group. Only its creator may do this.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	actor := middleware.Account(r.Context())
	if err := h.Ledger.DeleteGroup(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- expenses and settlements ---

// AddExpense records an expense paid by the caller.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	var req addExpenseRequest
	if !decode(w, r, &req) {
		return
	}

	payer := middleware.Account(r.Context())
	if err := h.Ledger.AddExpense(r.Context(), payer, id, req.Amount, req.Participants); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetExpenses returns the group's expense history, oldest first.
func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	expenses, err := h.Ledger.Expenses(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// SettleDebt records a payment from the caller to another member.
func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	var req settleDebtRequest
	if !decode(w, r, &req) {
		return
	}

	from := middleware.Account(r.Context())
	if err := h.Ledger.SettleDebt(r.Context(), from, id, req.To, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettlements returns the proposed payments that would zero every
// balance in the group.
func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	settlements, err := h.Ledger.Settlements(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if settlements == nil {
		settlements = []models.Settlement{}
	}
	writeJSON(w, http.StatusOK, settlements)
}

// GetBalance returns one member's balance in the group.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	account := models.Account(chi.URLParam(r, "account"))

	balance, err := h.Ledger.Balance(r.Context(), id, account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{GroupID: id, Account: account, Balance: balance})
}

// GetActivities returns the group's journal, oldest first.
func (h *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	activities, err := h.Ledger.Activities(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// --- helpers ---

// groupID parses the {id} route parameter, writing a 400 on failure.
func groupID(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid group id"})
		return 0, false
	}
	return uint32(id), true
}

// decode parses the JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps ledger and auth errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUserNotRegistered),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotAMember),
		errors.Is(err, ledger.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrAlreadyMember),
		errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
