package models

import "github.com/api-sage/mini-bank-ledger/internal/commons"

// ErrorEnvelope is a data-less error response for transport-level failures
// such as unsupported methods.
func ErrorEnvelope(message string, errors ...string) commons.Response[struct{}] {
	return commons.ErrorResponse[struct{}](message, errors...)
}
