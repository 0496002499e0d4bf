package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the category a failed call falls into. It depends only on the
// HTTP status, or on the transport failing before any status arrived.
type Kind int

const (
	KindGeneric Kind = iota
	KindAuthRequired
	KindNotFound
	KindValidation
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth_required"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	default:
		return "generic"
	}
}

// KindForStatus maps a non-2xx status to its Kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthRequired
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	default:
		return KindGeneric
	}
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	msg := fmt.Sprintf("server returned %d (%s)", e.Status, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg += " [" + strings.Join(parts, "; ") + "]"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable is true only for transport failures.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork
}

// KindOf returns the Kind of err, KindGeneric for errors not produced by
// the client.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindGeneric
}

// IsRetryable reports whether err is a client error worth retrying.
func IsRetryable(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Retryable()
}
