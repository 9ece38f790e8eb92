package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/baechuer/otp-dashboard/internal/logger"
	"github.com/baechuer/otp-dashboard/internal/session"
	"github.com/baechuer/otp-dashboard/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	domain.APIError
	Upgrade bool `json:"upgrade,omitempty"`
}

func sendError(w http.ResponseWriter, r *http.Request, code string, message string, status int) {
	writeError(w, r, status, errorBody{APIError: apiError(r, code, message)})
}

func apiError(r *http.Request, code, message string) domain.APIError {
	var e domain.APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = middleware.GetRequestID(r.Context())
	return e
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleFailure renders a service error. Backend messages for validation and
// plan-limit failures are shown verbatim; transport details never are.
func handleFailure(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	f, ok := domain.AsFailure(err)
	if !ok {
		logger.Ctx(r.Context()).Error().Err(err).Msg("unclassified_error")
		sendError(w, r, "internal_error", defaultMsg, http.StatusBadGateway)
		return
	}

	switch f.Kind {
	case domain.KindValidation:
		sendError(w, r, "validation_failed", f.Message, http.StatusBadRequest)
	case domain.KindPlanLimit:
		writeError(w, r, http.StatusBadRequest, errorBody{
			APIError: apiError(r, "plan_limit", f.Message),
			Upgrade:  true,
		})
	case domain.KindUnauthorized:
		sendError(w, r, "unauthorized", f.Message, http.StatusUnauthorized)
	case domain.KindForbidden:
		sendError(w, r, "forbidden", f.Message, http.StatusForbidden)
	case domain.KindNotFound:
		sendError(w, r, "not_found", f.Message, http.StatusNotFound)
	case domain.KindTransport:
		logger.Ctx(r.Context()).Warn().Err(f.Err).Msg("backend_unreachable")
		sendError(w, r, "backend_unavailable", defaultMsg, http.StatusBadGateway)
	default:
		logger.Ctx(r.Context()).Warn().Err(f).Int("backend_status", f.Status).Msg("backend_error")
		sendError(w, r, "upstream_error", defaultMsg, http.StatusBadGateway)
	}
}

// decodeValid reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler should go on.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		sendError(w, r, "invalid_body", "Request body must be valid JSON", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		sendError(w, r, "validation_failed", validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from the current password", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in international format", field)
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s must be a hostname or IP address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// sessionOf returns the request's session. Routes behind the guard always
// have one.
func sessionOf(r *http.Request) *session.Manager {
	return middleware.SessionFrom(r)
}

func currentUserID(r *http.Request) string {
	if m := sessionOf(r); m != nil {
		if u := m.User(); u != nil {
			return u.ID
		}
	}
	return ""
}
