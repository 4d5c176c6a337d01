package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/metrics"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	kv := store.NewMemory()
	reg := prometheus.NewRegistry()
	svc := ledger.New(kv, ledger.WithMetrics(metrics.New(reg)))

	handler := NewHandler(
		svc,
		auth.NewAuthenticator(kv),
		auth.NewJWTManager("test-secret", time.Hour),
	)
	server := httptest.NewServer(NewRouter(handler, reg))
	t.Cleanup(server.Close)
	return server
}

// call issues a JSON request and decodes the response body into out
// (when out is non-nil), returning the status code.
func call(t *testing.T, server *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signUp registers a user through the API and returns the session.
func signUp(t *testing.T, server *httptest.Server, name string) sessionResponse {
	t.Helper()

	var session sessionResponse
	status := call(t, server, http.MethodPost, "/api/auth/signup", "", signUpRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "hunter2hunter2",
	}, &session)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.Account)
	return session
}

func TestSignUpAndLogIn(t *testing.T) {
	server := newTestServer(t)

	carol := signUp(t, server, "carol")

	var session sessionResponse
	status := call(t, server, http.MethodPost, "/api/auth/login", "", logInRequest{
		Email:    "carol@example.com",
		Password: "hunter2hunter2",
	}, &session)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, carol.Account, session.Account)

	status = call(t, server, http.MethodPost, "/api/auth/login", "", logInRequest{
		Email:    "carol@example.com",
		Password: "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Signup registered carol in the directory.
	var user userResponse
	status = call(t, server, http.MethodGet, "/api/users/"+string(carol.Account), carol.Token, nil, &user)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, user.Registered)
	assert.Equal(t, "carol", user.DisplayName)

	// Re-registering overwrites the display name.
	status = call(t, server, http.MethodPost, "/api/register", carol.Token, registerRequest{Name: "Caroline"}, nil)
	require.Equal(t, http.StatusNoContent, status)

	status = call(t, server, http.MethodGet, "/api/users/"+string(carol.Account), carol.Token, nil, &user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Caroline", user.DisplayName)
}

func TestRequiresAuth(t *testing.T) {
	server := newTestServer(t)

	status := call(t, server, http.MethodPost, "/api/groups", "", createGroupRequest{Name: "Trip"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = call(t, server, http.MethodPost, "/api/groups", "garbage-token", createGroupRequest{Name: "Trip"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGroupLifecycle(t *testing.T) {
	server := newTestServer(t)

	carol := signUp(t, server, "carol")
	mia := signUp(t, server, "mia")
	max := signUp(t, server, "max")

	// Create a group with all three members.
	var created createGroupResponse
	status := call(t, server, http.MethodPost, "/api/groups", carol.Token, createGroupRequest{
		Name:    "Trip",
		Members: []models.Account{mia.Account, max.Account},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, uint32(1), created.GroupID)

	base := fmt.Sprintf("/api/groups/%d", created.GroupID)

	// All balances start at zero.
	var view models.GroupWithBalances
	status = call(t, server, http.MethodGet, base+"/balances", carol.Token, nil, &view)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, view.Members, 3)
	for _, m := range view.Members {
		assert.Zero(t, m.Balance)
	}
	assert.Equal(t, carol.Account, view.Creator)

	// Carol pays 300 for everyone.
	status = call(t, server, http.MethodPost, base+"/expenses", carol.Token, addExpenseRequest{
		Amount:       300,
		Participants: []models.Account{carol.Account, mia.Account, max.Account},
	}, nil)
	require.Equal(t, http.StatusNoContent, status)

	var balance balanceResponse
	status = call(t, server, http.MethodGet, base+"/members/"+string(mia.Account)+"/balance", mia.Token, nil, &balance)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(-100), balance.Balance)

	// Over-settling is rejected; the exact amount goes through.
	status = call(t, server, http.MethodPost, base+"/settlements", mia.Token, settleDebtRequest{
		To: carol.Account, Amount: 101,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, server, http.MethodPost, base+"/settlements", mia.Token, settleDebtRequest{
		To: carol.Account, Amount: 100,
	}, nil)
	require.Equal(t, http.StatusNoContent, status)

	// The remaining plan is max paying carol 100.
	var plan []models.Settlement
	status = call(t, server, http.MethodGet, base+"/settlements", carol.Token, nil, &plan)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, plan, 1)
	assert.Equal(t, models.Settlement{From: max.Account, To: carol.Account, Amount: 100}, plan[0])

	// Journal: creation, expense, settlement.
	var activities []models.Activity
	status = call(t, server, http.MethodGet, base+"/activities", carol.Token, nil, &activities)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, activities, 3)
	assert.Equal(t, models.ActivityExpense, activities[1].Kind)
	assert.Equal(t, models.ActivitySettlement, activities[2].Kind)

	// Expense history.
	var expenses []models.Expense
	status = call(t, server, http.MethodGet, base+"/expenses", carol.Token, nil, &expenses)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(300), expenses[0].Amount)

	// Membership index.
	var mine memberGroupsResponse
	status = call(t, server, http.MethodGet, "/api/me/groups", mia.Token, nil, &mine)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uint32{created.GroupID}, mine.GroupIDs)

	// Only the creator may delete.
	status = call(t, server, http.MethodDelete, base, mia.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = call(t, server, http.MethodDelete, base, carol.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status = call(t, server, http.MethodGet, base+"/balances", carol.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddMemberOverAPI(t *testing.T) {
	server := newTestServer(t)

	carol := signUp(t, server, "carol")
	mia := signUp(t, server, "mia")

	var created createGroupResponse
	status := call(t, server, http.MethodPost, "/api/groups", carol.Token, createGroupRequest{Name: "Flat"}, &created)
	require.Equal(t, http.StatusCreated, status)

	base := fmt.Sprintf("/api/groups/%d", created.GroupID)

	status = call(t, server, http.MethodPost, base+"/members", carol.Token, addMemberRequest{Account: mia.Account}, nil)
	require.Equal(t, http.StatusNoContent, status)

	// Adding again conflicts.
	status = call(t, server, http.MethodPost, base+"/members", carol.Token, addMemberRequest{Account: mia.Account}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Adding an account that never signed up fails the directory check.
	status = call(t, server, http.MethodPost, base+"/members", carol.Token, addMemberRequest{Account: "ghost"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestErrorMapping(t *testing.T) {
	server := newTestServer(t)
	carol := signUp(t, server, "carol")

	// Unknown group.
	status := call(t, server, http.MethodGet, "/api/groups/99/balances", carol.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Malformed group id.
	status = call(t, server, http.MethodGet, "/api/groups/abc/balances", carol.Token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Group with an unregistered member.
	status = call(t, server, http.MethodPost, "/api/groups", carol.Token, createGroupRequest{
		Name:    "Bad",
		Members: []models.Account{"ghost"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
