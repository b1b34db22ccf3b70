package dto

import (
	"errors"
	"net/http"

	"github.com/nexusgg/partner-portal/internal/platform"
)

// Stable error codes exposed to the front-end.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeValidation     = "VALIDATION_ERROR"
	CodeRequestFailed  = "REQUEST_FAILED"
	CodeUpstreamError  = "UPSTREAM_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeBadRequest     = "BAD_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
)

// FromError maps an error from the service layer to an HTTP status and the
// response envelope. Platform errors keep their user-facing message; anything
// else is reported as an upstream failure without leaking internals.
func FromError(err error) (int, Response) {
	var perr *platform.Error
	if !errors.As(err, &perr) {
		return http.StatusBadGateway, NewErrorResponse(CodeUpstreamError, "The platform request failed.")
	}

	switch perr.Kind {
	case platform.KindNetwork:
		return http.StatusBadGateway, NewErrorResponse(CodeNetworkError, perr.Message)
	case platform.KindSessionExpired:
		return http.StatusUnauthorized, NewErrorResponse(CodeSessionExpired, perr.Message)
	case platform.KindValidation:
		resp := NewErrorResponse(CodeValidation, perr.Message)
		for _, f := range perr.Fields {
			resp.Error.Fields = append(resp.Error.Fields, f.Path()+": "+f.Msg)
		}
		return http.StatusUnprocessableEntity, resp
	case platform.KindClient:
		status := perr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadRequest
		}
		return status, NewErrorResponse(CodeRequestFailed, perr.Message)
	default:
		return http.StatusBadGateway, NewErrorResponse(CodeUpstreamError, perr.Message)
	}
}
