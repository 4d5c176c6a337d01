package api

import "github.com/splitpot/splitpot/internal/models"

// Auth

type signUpRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
}

// Directory

type registerRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	Account     models.Account `json:"account"`
	Registered  bool           `json:"registered"`
	DisplayName string         `json:"display_name"`
}

// Groups

type createGroupRequest struct {
	Name    string           `json:"name"`
	Members []models.Account `json:"members"`
}

type createGroupResponse struct {
	GroupID uint32 `json:"group_id"`
}

type groupCountResponse struct {
	Count uint32 `json:"count"`
}

type memberGroupsResponse struct {
	GroupIDs []uint32 `json:"group_ids"`
}

type addMemberRequest struct {
	Account models.Account `json:"account"`
}

// Expenses and settlements

type addExpenseRequest struct {
	Amount       int64            `json:"amount"`
	Participants []models.Account `json:"participants"`
}

type settleDebtRequest struct {
	To     models.Account `json:"to"`
	Amount int64          `json:"amount"`
}

type balanceResponse struct {
	GroupID uint32         `json:"group_id"`
	Account models.Account `json:"account"`
	Balance int64          `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}
