package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type AccountService interface {
	CreateAccount(ctx context.Context, principal domain.Principal, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, principal domain.Principal, accountNumber string) (commons.Response[models.AccountResponse], error)
	UpdateAccount(ctx context.Context, principal domain.Principal, req models.UpdateAccountRequest) (commons.Response[models.AccountResponse], error)
	Statement(ctx context.Context, principal domain.Principal, accountNumber string, limit int) (commons.Response[models.StatementResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/accounts":           c.accounts,
		"/accounts/update":    c.update,
		"/accounts/statement": c.statement,
	}

	for path, handler := range routes {
		wrapped := http.Handler(handler)
		if authMiddleware != nil {
			wrapped = authMiddleware(wrapped)
		}
		mux.Handle(path, wrapped)
	}
}

func (c *AccountController) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.create(w, r)
	case http.MethodGet:
		c.get(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorEnvelope("method not allowed"))
	}
}

func (c *AccountController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	principal := middleware.PrincipalFromContext(r.Context())
	response, err := c.service.CreateAccount(r.Context(), principal, req)
	if err != nil {
		status := statusForMessage(response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *AccountController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	principal := middleware.PrincipalFromContext(r.Context())
	response, err := c.service.GetAccount(r.Context(), principal, r.URL.Query().Get("accountNumber"))
	if err != nil {
		status := statusForMessage(response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorEnvelope("method not allowed"))
		return
	}

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	principal := middleware.PrincipalFromContext(r.Context())
	response, err := c.service.UpdateAccount(r.Context(), principal, req)
	if err != nil {
		status := statusForMessage(response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AccountController) statement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorEnvelope("method not allowed"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response := commons.ErrorResponse[models.StatementResponse]("validation failed", "limit must be a non-negative integer")
			writeJSON(w, http.StatusBadRequest, response)
			logResponse(r, http.StatusBadRequest, response, start)
			return
		}
		limit = parsed
	}

	principal := middleware.PrincipalFromContext(r.Context())
	response, err := c.service.Statement(r.Context(), principal, r.URL.Query().Get("accountNumber"), limit)
	if err != nil {
		status := statusForMessage(response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
