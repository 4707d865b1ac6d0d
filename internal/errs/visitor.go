package errs

import "errors"

// Rejection reasons returned to clients of the visitor function. The message
// of each rejection is exactly its reason string.
const (
	ReasonMissingBody = "missing body"
	ReasonInvalidJSON = "unparseable JSON"
	ReasonMissingName = "missing or empty name"
)

// Machine codes for the rejections above.
const (
	CodeMissingBody = "MISSING_BODY"
	CodeInvalidJSON = "INVALID_JSON"
	CodeMissingName = "MISSING_OR_EMPTY_NAME"
)

// NewMissingBodyError rejects a request whose body is empty or whitespace only.
func NewMissingBodyError() *HTTPError {
	code := CodeMissingBody
	return NewBadRequestError(ReasonMissingBody, true, &code, nil, nil)
}

// NewInvalidJSONError rejects a body that is not JSON, or is JSON null.
func NewInvalidJSONError() *HTTPError {
	code := CodeInvalidJSON
	return NewBadRequestError(ReasonInvalidJSON, true, &code, nil, nil)
}

// NewMissingNameError rejects a payload without a usable name.
func NewMissingNameError() *HTTPError {
	code := CodeMissingName
	return NewBadRequestError(ReasonMissingName, true, &code, []FieldError{
		{Field: "name", Error: "is required"},
	}, nil)
}

// IsRejection reports whether err is one of the visitor input rejections and
// returns its code.
func IsRejection(err error) (string, bool) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return "", false
	}
	switch httpErr.Code {
	case CodeMissingBody, CodeInvalidJSON, CodeMissingName:
		return httpErr.Code, true
	}
	return "", false
}
