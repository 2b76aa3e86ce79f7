package httperror

import (
	"errors"
	"fmt"
	"net/http"

	"catalog/domain"
)

// Error is returned by handlers and rendered by the HTTP layer as
// {"code", "message", "details"} with the given status.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(status int, code, message string, details any) *Error {
	return &Error{Status: status, Code: code, Message: message, Details: details}
}

func BadRequest(code, message string, details any) *Error {
	return New(http.StatusBadRequest, code, message, details)
}

func NotFound(code, message string, details any) *Error {
	return New(http.StatusNotFound, code, message, details)
}

func Conflict(code, message string, details any) *Error {
	return New(http.StatusConflict, code, message, details)
}

func UnprocessableEntity(code, message string, details any) *Error {
	return New(http.StatusUnprocessableEntity, code, message, details)
}

// NoContent signals a successful operation with an empty body. Handlers
// return it as the error value, writeError renders a bare status.
func NoContent(code, message string, details any) *Error {
	return New(http.StatusNoContent, code, message, details)
}

func InternalServerError(code, message string, details any) *Error {
	return New(http.StatusInternalServerError, code, message, details)
}

func ServiceUnavailable(code, message string, details any) *Error {
	return New(http.StatusServiceUnavailable, code, message, details)
}

// FromDomain translates a catalog error into an HTTP error coded
// "<operation>.<kind>", e.g. "item.update.not_found".
func FromDomain(operation string, err error) *Error {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr
	}

	kind := domain.Kind(err)
	code := operation + "." + kind

	var out *Error
	switch kind {
	case "invalid_update_request", "invalid_input":
		// an unresolved category reference is well-formed but unprocessable
		if errors.Is(err, domain.ErrNotFound) {
			out = UnprocessableEntity(code, err.Error(), notFoundDetails(err))
		} else {
			out = BadRequest(code, err.Error(), nil)
		}
	case "invalid_patch":
		out = BadRequest(code, err.Error(), nil)
	case "not_found":
		out = NotFound(code, err.Error(), notFoundDetails(err))
	case "already_exists", "in_use":
		out = Conflict(code, err.Error(), nil)
	case "dependency_unavailable":
		out = ServiceUnavailable(code, "A backing service is unavailable, retry later", nil)
	default:
		out = InternalServerError(operation+".failed", "An unexpected error occurred", nil)
	}
	out.cause = err
	return out
}

func notFoundDetails(err error) any {
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return nil
	}
	return map[string]any{"entity": nf.Entity, "key": fmt.Sprint(nf.Key)}
}
