package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/models"
	"github.com/api-sage/mini-bank-ledger/internal/commons"
	"github.com/api-sage/mini-bank-ledger/internal/domain"
)

type FundsService interface {
	RequestCredit(ctx context.Context, principal domain.Principal, req models.CreditRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmCredit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error)
	RequestDebit(ctx context.Context, principal domain.Principal, req models.DebitRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmDebit(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.MovementResponse], error)
	RequestTransfer(ctx context.Context, principal domain.Principal, req models.TransferRequest) (commons.Response[models.OTPChallengeResponse], error)
	ConfirmTransfer(ctx context.Context, principal domain.Principal, req models.ConfirmRequest) (commons.Response[models.TransferResponse], error)
}

type FundsController struct {
	service FundsService
}

func NewFundsController(service FundsService) *FundsController {
	return &FundsController{service: service}
}

func (c *FundsController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/credit":                 post(c.requestCredit),
		"/credit/confirm":         post(c.confirmCredit),
		"/debit":                  post(c.requestDebit),
		"/debit/confirm":          post(c.confirmDebit),
		"/transfer-funds":         post(c.requestTransfer),
		"/transfer-funds/confirm": post(c.confirmTransfer),
	}

	for path, handler := range routes {
		wrapped := http.Handler(handler)
		if authMiddleware != nil {
			wrapped = authMiddleware(wrapped)
		}
		mux.Handle(path, wrapped)
	}
}

func post(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, models.ErrorEnvelope("method not allowed"))
			return
		}
		next(w, r)
	}
}

func (c *FundsController) requestCredit(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.RequestCredit, http.StatusOK)
}

func (c *FundsController) confirmCredit(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.ConfirmCredit, http.StatusOK)
}

func (c *FundsController) requestDebit(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.RequestDebit, http.StatusOK)
}

func (c *FundsController) confirmDebit(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.ConfirmDebit, http.StatusOK)
}

func (c *FundsController) requestTransfer(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.RequestTransfer, http.StatusOK)
}

func (c *FundsController) confirmTransfer(w http.ResponseWriter, r *http.Request) {
	handleFunds(w, r, c.service.ConfirmTransfer, http.StatusOK)
}

// handleFunds decodes the request, resolves the caller's principal and
// relays the service response with the mapped status code.
func handleFunds[Req any, Resp any](
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, principal domain.Principal, req Req) (commons.Response[Resp], error),
	successStatus int,
) {
	start := time.Now()

	var req Req
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[Resp]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	principal := middleware.PrincipalFromContext(r.Context())
	response, err := call(r.Context(), principal, req)
	if err != nil {
		status := statusForMessage(response.Message)
		logError(r, err, nil)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, successStatus, response)
	logResponse(r, successStatus, response, start)
}
