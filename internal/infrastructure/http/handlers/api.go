// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/pkg/errors"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 64 << 10

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// base carries what every handler group needs
type base struct {
	validate *validator.Validate
	logger   *zap.Logger
}

func newBase(logger *zap.Logger) base {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return base{validate: v, logger: logger}
}

// decode reads a JSON body into dst and validates it
func (b base) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError(fmt.Sprintf("Invalid request body: %v", err))
	}
	return b.check(dst)
}

// check validates a populated DTO
func (b base) check(dst interface{}) error {
	if err := b.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.NewBadRequestError(err.Error())
		}
		out := make([]errors.ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, errors.ValidationError{
				Field:   fe.Namespace(),
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()),
			})
		}
		return errors.NewValidationErrors(out)
	}
	return nil
}

// writeJSON writes a JSON response
func (b base) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps session and preference errors before rendering
func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, inbound.ErrSessionNotFound):
		err = errors.NewSessionNotFoundError(chi.URLParam(r, "sessionID"))
	case stderrors.Is(err, preference.ErrNegativeCalorieGoal),
		stderrors.Is(err, preference.ErrUnknownPlan),
		stderrors.Is(err, preference.ErrUnknownLocale),
		stderrors.Is(err, preference.ErrEmptyValue):
		err = errors.NewValidationError(err.Error())
	}

	appErr := errors.Wrap(err, "")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		b.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	middleware.WriteError(w, r, appErr)
}

// sessionID parses the {sessionID} route parameter
func sessionID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.NewSessionNotFoundError(raw)
	}
	return id, nil
}
