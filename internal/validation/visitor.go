package validation

import (
	"bytes"
	"strings"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/tidwall/gjson"
)

var visitorValidate = newVisitorValidator()

func newVisitorValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// VisitorRequest is the payload of the visitor function.
//
// Checks run strictly in order and the first failure wins:
// empty body, unparseable JSON (including a bare null), then name.
type VisitorRequest struct {
	Name string `json:"name" validate:"required,notblank"`
}

// BindBody parses the raw body. A name that is present but not a JSON
// string is treated as missing. Invalid UTF-8 in the name is replaced with
// U+FFFD so the greeting and the stored record carry the same text.
func (r *VisitorRequest) BindBody(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errs.NewMissingBodyError()
	}

	if !gjson.ValidBytes(body) {
		return errs.NewInvalidJSONError()
	}

	doc := gjson.ParseBytes(body)
	if doc.Type == gjson.Null {
		return errs.NewInvalidJSONError()
	}

	r.Name = ""
	if doc.IsObject() {
		if name := doc.Get("name"); name.Type == gjson.String {
			r.Name = strings.ToValidUTF8(name.String(), "\uFFFD")
		}
	}

	return nil
}

// Validate rejects empty and whitespace-only names.
func (r *VisitorRequest) Validate() error {
	if err := visitorValidate.Struct(r); err != nil {
		return errs.NewMissingNameError()
	}
	return nil
}

// ParseVisitorRequest runs the full parse-and-validate sequence on a raw body.
func ParseVisitorRequest(body []byte) (*VisitorRequest, error) {
	req := &VisitorRequest{}
	if err := req.BindBody(body); err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	return req, nil
}
