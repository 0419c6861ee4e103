package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]int{"n": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    pkgerrors.Code
		message string
	}{
		{"validation", pkgerrors.Field("amount", "must be positive"), http.StatusBadRequest, pkgerrors.CodeValidation, "must be positive"},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found"), http.StatusNotFound, pkgerrors.CodeNotFound, "subscription not found"},
		{"duplicate", pkgerrors.New(pkgerrors.CodeConflict, "already subscribed"), http.StatusConflict, pkgerrors.CodeConflict, "already subscribed"},
		{"transition", pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move"), http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict, "cannot move"},
		{"signature", pkgerrors.New(pkgerrors.CodeInvalidSignature, "Invalid signature"), http.StatusUnauthorized, pkgerrors.CodeInvalidSignature, "Invalid signature"},
		{"dependency hides message", pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "load subscription"), http.StatusServiceUnavailable, pkgerrors.CodeDependency, "dependency unavailable"},
		{"wrapped typed error", fmt.Errorf("outer: %w", pkgerrors.New(pkgerrors.CodeForbidden, "role required")), http.StatusForbidden, pkgerrors.CodeForbidden, "role required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), logger.Nop(), w, tt.err)

			if w.Code != tt.status {
				t.Fatalf("expected status %d but got %d", tt.status, w.Code)
			}
			var body ErrorEnvelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error envelope: %v", err)
			}
			if body.Error.Code != string(tt.code) {
				t.Fatalf("unexpected code %s", body.Error.Code)
			}
			if body.Error.Message != tt.message {
				t.Fatalf("unexpected message %q", body.Error.Message)
			}
		})
	}
}

func TestWriteErrorKeepsValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, pkgerrors.Field("plan_id", "is required"))

	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["plan_id"] != "is required" {
		t.Fatalf("expected field details got %v", body.Error.Details)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal error message leaked: %q", body.Error.Message)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}
