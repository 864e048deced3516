// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/ecolefin/internal/importer"
	"github.com/MrJamesThe3rd/ecolefin/internal/matching"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode reads a JSON body into dst and validates its struct tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return BadRequest(fmt.Sprintf("invalid request body: %v", err))
	}

	return validate.Struct(dst)
}

// BadRequest is an error whose message is safe to show to the client.
type BadRequest string

func (e BadRequest) Error() string { return string(e) }

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	JSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var (
		fieldErrs validator.ValidationErrors
		badReq    BadRequest
	)

	switch {
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = describe(fe)
		}

		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields}
	case errors.As(err, &badReq):
		return http.StatusBadRequest, errorResponse{Error: badReq.Error()}
	case errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, transaction.ErrDuplicateCategory):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, period.ErrUnknownPeriod),
		errors.Is(err, period.ErrInvalidCustomRange),
		errors.Is(err, period.ErrInvalidTimestamp),
		errors.Is(err, matching.ErrEmptyPattern),
		errors.Is(err, importer.ErrInvalidFile),
		transaction.IsValidation(err):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal error"}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	}

	return "is invalid"
}
