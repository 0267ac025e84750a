// Package apierror maps domain errors onto transport status codes and stable reasons.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/userauth/internal/model"
	"github.com/dtroode/userauth/internal/validation"
)

// Domain is reported in every gRPC ErrorInfo.
const Domain = "userauth"

// Reasons not carried by a domain error type.
const (
	ReasonValidation   = "VALIDATION_FAILED"
	ReasonBadRequest   = "BAD_REQUEST"
	ReasonMissingToken = "MISSING_TOKEN"
	ReasonInternal     = "INTERNAL"
)

// APIError is an error ready to be written by a transport.
type APIError struct {
	HTTPStatus int
	GRPCCode   codes.Code
	Reason     string
	Message    string
	Violations []validation.Violation
}

func (e *APIError) Error() string {
	return e.Message
}

// Messages returns the violation lines, or the message when there are none.
func (e *APIError) Messages() []string {
	if len(e.Violations) == 0 {
		return []string{e.Message}
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}
	return msgs
}

// GRPCStatus builds a status carrying an ErrorInfo and, for validation
// failures, a BadRequest detail.
func (e *APIError) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode, e.Message)

	info := &errdetails.ErrorInfo{Reason: e.Reason, Domain: Domain}
	if len(e.Violations) == 0 {
		if withDetails, err := st.WithDetails(info); err == nil {
			return withDetails
		}
		return st
	}

	badRequest := &errdetails.BadRequest{}
	for _, v := range e.Violations {
		badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Message,
		})
	}
	if withDetails, err := st.WithDetails(info, badRequest); err == nil {
		return withDetails
	}
	return st
}

// NewBadRequest reports a request that could not be decoded.
func NewBadRequest(message string) *APIError {
	return &APIError{
		HTTPStatus: http.StatusBadRequest,
		GRPCCode:   codes.InvalidArgument,
		Reason:     ReasonBadRequest,
		Message:    message,
	}
}

// From classifies err. Unknown errors become a generic internal error so
// their text never reaches the caller.
func From(err error) *APIError {
	var (
		apiErr       *APIError
		validationEr *validation.Error
		conflict     *model.ConflictError
		unauthorized *model.UnauthorizedError
		invalidToken *model.InvalidTokenError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validationEr):
		return &APIError{
			HTTPStatus: http.StatusBadRequest,
			GRPCCode:   codes.InvalidArgument,
			Reason:     ReasonValidation,
			Message:    "Bad Request",
			Violations: validationEr.Violations,
		}
	case errors.Is(err, model.ErrPasswordTooLong):
		return &APIError{
			HTTPStatus: http.StatusBadRequest,
			GRPCCode:   codes.InvalidArgument,
			Reason:     ReasonValidation,
			Message:    "Bad Request",
			Violations: []validation.Violation{{
				Field:   "password",
				Message: fmt.Sprintf("must be at most %d bytes", model.MaxPasswordBytes),
			}},
		}
	case errors.As(err, &conflict):
		return &APIError{
			HTTPStatus: http.StatusConflict,
			GRPCCode:   codes.AlreadyExists,
			Reason:     conflict.Reason(),
			Message:    conflict.Error(),
		}
	case errors.As(err, &unauthorized):
		return &APIError{
			HTTPStatus: http.StatusUnauthorized,
			GRPCCode:   codes.Unauthenticated,
			Reason:     unauthorized.Reason(),
			Message:    unauthorized.Error(),
		}
	case errors.As(err, &invalidToken):
		return &APIError{
			HTTPStatus: http.StatusUnauthorized,
			GRPCCode:   codes.Unauthenticated,
			Reason:     invalidToken.Code(),
			Message:    "Unauthorized",
		}
	case errors.Is(err, model.ErrMissingToken):
		return &APIError{
			HTTPStatus: http.StatusUnauthorized,
			GRPCCode:   codes.Unauthenticated,
			Reason:     ReasonMissingToken,
			Message:    "Unauthorized",
		}
	default:
		return &APIError{
			HTTPStatus: http.StatusInternalServerError,
			GRPCCode:   codes.Internal,
			Reason:     ReasonInternal,
			Message:    "Internal server error",
		}
	}
}
