package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/booknest/backend/models"
	"github.com/booknest/backend/store"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// FieldError reports one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeFieldErrors responds 400 with per-field validation messages.
func writeFieldErrors(w http.ResponseWriter, fieldErrs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fieldErrs,
	})
}

// writeValidationError converts a validator error into the per-field
// response shape.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "validation failed")
		return
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: "failed on " + fe.Tag(),
		})
	}
	writeFieldErrors(w, fields)
}

// checkEnum records a field error when value is set but not a member of
// the enumeration.
func checkEnum(fields *[]FieldError, field, value string, allowed []string) {
	if value == "" {
		return
	}
	if !models.In(allowed, value) {
		*fields = append(*fields, FieldError{Field: field, Message: "must be one of the allowed values"})
	}
}

func checkEnumSet(fields *[]FieldError, field string, values []string, allowed []string) {
	if !models.AllIn(allowed, values) {
		*fields = append(*fields, FieldError{Field: field, Message: "contains a value outside the allowed set"})
	}
}

// listResponse is the envelope shared by all list endpoints. Degraded
// is set when storage was unreachable and the empty page is a fallback,
// not a real result.
type listResponse struct {
	Items      any              `json:"items"`
	Count      int              `json:"count"`
	Pagination store.Pagination `json:"pagination"`
	Degraded   bool             `json:"degraded,omitempty"`
}

// writeDegradedList keeps the read path available when the backend is
// down: log the failure and return an empty page flagged as degraded.
func writeDegradedList(w http.ResponseWriter, resource string, page int, err error) {
	log.Printf("%s: list degraded: %v", resource, err)
	writeJSON(w, http.StatusOK, listResponse{
		Items:      []any{},
		Count:      0,
		Pagination: store.Pagination{Current: page},
		Degraded:   true,
	})
}
