package main

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/feedback-server/client"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("missing <id> argument"), "error: missing <id> argument"},
		{"auth", &client.Error{Kind: client.KindAuthRequired, Status: http.StatusUnauthorized}, "not signed in or session expired; run `feedbackctl login`"},
		{"not found", &client.Error{Kind: client.KindNotFound, Status: http.StatusNotFound}, "not found"},
		{"wrapped", fmt.Errorf("load form: %w", &client.Error{Kind: client.KindNotFound, Status: http.StatusNotFound}), "not found"},
		{"validation", &client.Error{
			Kind:    client.KindValidation,
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Fields:  map[string]string{"title": "required", "form_type": "unknown"},
		}, "invalid input:\n  form_type: unknown\n  title: required"},
		{"validation without fields", &client.Error{Kind: client.KindValidation, Message: "Invalid payload"}, "invalid input: Invalid payload"},
		{"network", &client.Error{Kind: client.KindNetwork, Err: errors.New("connection refused")}, "could not reach the server: connection refused"},
		{"other", &client.Error{Kind: client.KindGeneric, Status: http.StatusTooManyRequests, Message: "slow down"}, "request failed (429): slow down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeError(tt.err))
		})
	}
}
