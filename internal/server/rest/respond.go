package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// statusFor maps a service error to a status code and client message.
// Anything it does not recognise is an internal error.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorUnauthenticated):
		return http.StatusUnauthorized, common.Detail(err, "Not authenticated")
	case errors.Is(err, common.ErrorInactive):
		return http.StatusBadRequest, common.Detail(err, "Inactive user")
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, common.Detail(err, "Not authorized")
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.Detail(err, "Not found")
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusBadRequest, common.Detail(err, "Username already registered")
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest, common.Detail(err, "Email already registered")
	case errors.Is(err, common.ErrorConflict):
		return http.StatusBadRequest, common.Detail(err, "Conflict")
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, common.Detail(err, "Invalid request")
	case errors.Is(err, common.ErrorInternal):
		return http.StatusInternalServerError, "Internal server error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "error", err,
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

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

// validationDetail turns the first failed rule into a client message.
func validationDetail(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if fe.Param() != "" {
			return fmt.Sprintf("%s: failed %s=%s validation", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
	return "Invalid request"
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return common.WithDetail(common.ErrorValidation, "Invalid request body")
	}
	return s.check(dst)
}

func (s *Server) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return common.WithDetail(common.ErrorValidation, validationDetail(err))
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.WithDetail(common.ErrorValidation, fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}
