package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

const (
	googleAPIVersion    = "2.0"
	errorDomain         = "claim-ledger"
	internalErrorReason = "internalError"
	internalErrorMsg    = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Retryable bool              `json:"retryable,omitempty"`
	Errors    []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
	Retryable  bool
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: internalErrorReason, Status: "INTERNAL"}

// errorMappings is checked in order. Ledger sentinels come first because
// several of them are also wrapped in ErrInvalidInput or ErrConflict.
var errorMappings = []struct {
	target error
	mapped mappedError
}{
	{claim.ErrDuplicateClaim, mappedError{http.StatusConflict, "alreadyClaimed", "ALREADY_EXISTS", false}},
	{claim.ErrChallengeUnavailable, mappedError{http.StatusConflict, "challengeUnavailable", "FAILED_PRECONDITION", false}},
	{claim.ErrGameEnded, mappedError{http.StatusConflict, "gameEnded", "FAILED_PRECONDITION", false}},
	{claim.ErrInvalidClaimKind, mappedError{http.StatusBadRequest, "invalidClaimKind", "INVALID_ARGUMENT", false}},
	{claim.ErrReferential, mappedError{http.StatusUnprocessableEntity, "referentialError", "FAILED_PRECONDITION", false}},
	{claim.ErrEventNotFound, mappedError{http.StatusNotFound, "alreadyReversed", "NOT_FOUND", false}},
	{player.ErrNameTaken, mappedError{http.StatusConflict, "nameTaken", "ALREADY_EXISTS", false}},
	{challenge.ErrRepeatableConflict, mappedError{http.StatusConflict, "repeatableConflict", "FAILED_PRECONDITION", false}},
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT", false}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND", false}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "ABORTED", false}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE", true}},
	{context.DeadlineExceeded, mappedError{http.StatusGatewayTimeout, "timeout", "DEADLINE_EXCEEDED", true}},
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.mapped
		}
	}
	return internalError
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError maps err onto the envelope. Unmapped errors carry only the
// generic internal message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(ctx, err)
	msg := err.Error()
	if mapped.Reason == internalErrorReason {
		msg = internalErrorMsg
	}
	writeMappedError(ctx, w, mapped, msg)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeMappedError(ctx, w, internalError, internalErrorMsg)
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, mapped mappedError, msg string) {
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:      mapped.HTTPStatus,
			Message:   msg,
			Status:    mapped.Status,
			Retryable: mapped.Retryable,
			Errors: []googleErrorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: msg,
			}},
		},
	})
}
