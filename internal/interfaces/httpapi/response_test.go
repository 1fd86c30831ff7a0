package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/claim-ledger/internal/domain/challenge"
	"github.com/riskibarqy/claim-ledger/internal/domain/claim"
	"github.com/riskibarqy/claim-ledger/internal/domain/player"
	"github.com/riskibarqy/claim-ledger/internal/usecase"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	var env googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestWriteSuccess_DataWithoutError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusCreated, map[string]int{"points": 3})

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusCreated || env.APIVersion != googleAPIVersion {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}
	if env.Data == nil || env.Error != nil {
		t.Fatalf("expected data only, got %+v", env)
	}
}

func TestWriteError_UsesMappedReason(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("claim c-1: %w", claim.ErrDuplicateClaim))

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusConflict || env.Error == nil {
		t.Fatalf("expected 409 error envelope, got %d %+v", rec.Code, env)
	}
	if env.Error.Status != "ALREADY_EXISTS" || env.Error.Retryable {
		t.Fatalf("unexpected error body %+v", env.Error)
	}
	if len(env.Error.Errors) != 1 || env.Error.Errors[0].Reason != "alreadyClaimed" || env.Error.Errors[0].Domain != errorDomain {
		t.Fatalf("unexpected error items %+v", env.Error.Errors)
	}
	if !strings.Contains(env.Error.Message, "claim c-1") {
		t.Fatalf("expected wrapped message, got %q", env.Error.Message)
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: password authentication failed"))

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || env.Error.Message != internalErrorMsg {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestWriteError_MarksRetryable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: postgres", usecase.ErrDependencyUnavailable))

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusServiceUnavailable || !env.Error.Retryable {
		t.Fatalf("expected retryable 503, got %d %+v", rec.Code, env.Error)
	}
}

func TestMapError_Reasons(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		reason string
	}{
		"duplicate":           {fmt.Errorf("append: %w", claim.ErrDuplicateClaim), http.StatusConflict, "alreadyClaimed"},
		"inactive challenge":  {claim.ErrChallengeUnavailable, http.StatusConflict, "challengeUnavailable"},
		"kind beats input":    {fmt.Errorf("%w: %w", usecase.ErrInvalidInput, claim.ErrInvalidClaimKind), http.StatusBadRequest, "invalidClaimKind"},
		"referential":         {claim.ErrReferential, http.StatusUnprocessableEntity, "referentialError"},
		"reversed twice":      {claim.ErrEventNotFound, http.StatusNotFound, "alreadyReversed"},
		"ended game":          {claim.ErrGameEnded, http.StatusConflict, "gameEnded"},
		"name beats conflict": {fmt.Errorf("%w: %w", usecase.ErrConflict, player.ErrNameTaken), http.StatusConflict, "nameTaken"},
		"repeatable":          {fmt.Errorf("%w: %w", usecase.ErrConflict, challenge.ErrRepeatableConflict), http.StatusConflict, "repeatableConflict"},
		"plain conflict":      {usecase.ErrConflict, http.StatusConflict, "conflict"},
		"not found":           {usecase.ErrNotFound, http.StatusNotFound, "notFound"},
		"dependency":          {usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable"},
		"deadline":            {fmt.Errorf("append: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		"unknown":             {errors.New("boom"), http.StatusInternalServerError, internalErrorReason},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.status || got.Reason != tc.reason {
				t.Fatalf("got %d/%s, want %d/%s", got.HTTPStatus, got.Reason, tc.status, tc.reason)
			}
		})
	}
}
