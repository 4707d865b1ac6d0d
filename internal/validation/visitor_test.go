package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisitorRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantCode string
	}{
		{name: "valid", body: `{"name": "Ada"}`, wantName: "Ada"},
		{name: "valid with extra fields", body: `{"name":"Bob","age":36}`, wantName: "Bob"},
		{name: "name kept verbatim", body: `{"name":"  Grace "}`, wantName: "  Grace "},
		{name: "escaped name", body: `{"name":"Zoë"}`, wantName: "Zoë"},
		{name: "invalid utf-8 replaced", body: "{\"name\":\"A\xffda\"}", wantName: "A\uFFFDda"},
		{name: "invalid utf-8 only", body: "{\"name\":\"\xc3\x28\"}", wantName: "\uFFFD("},
		{name: "empty body", body: ``, wantCode: errs.CodeMissingBody},
		{name: "whitespace body", body: " \n\t ", wantCode: errs.CodeMissingBody},
		{name: "not json", body: `not json`, wantCode: errs.CodeInvalidJSON},
		{name: "truncated json", body: `{"name": "Ada"`, wantCode: errs.CodeInvalidJSON},
		{name: "json null", body: `null`, wantCode: errs.CodeInvalidJSON},
		{name: "missing name", body: `{}`, wantCode: errs.CodeMissingName},
		{name: "empty name", body: `{"name": ""}`, wantCode: errs.CodeMissingName},
		{name: "whitespace name", body: `{"name": "   "}`, wantCode: errs.CodeMissingName},
		{name: "null name", body: `{"name": null}`, wantCode: errs.CodeMissingName},
		{name: "numeric name", body: `{"name": 42}`, wantCode: errs.CodeMissingName},
		{name: "object name", body: `{"name": {"first": "Ada"}}`, wantCode: errs.CodeMissingName},
		{name: "array body", body: `[{"name": "Ada"}]`, wantCode: errs.CodeMissingName},
		{name: "string body", body: `"Ada"`, wantCode: errs.CodeMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseVisitorRequest([]byte(tt.body))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Nil(t, req)
				code, ok := errs.IsRejection(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, req.Name)
		})
	}
}

func TestBindAndValidate_BodyBinder(t *testing.T) {
	e := echo.New()
	httpReq := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(`{"name":"   "}`))
	c := e.NewContext(httpReq, httptest.NewRecorder())

	err := BindAndValidate(c, &VisitorRequest{})
	require.Error(t, err)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "missing or empty name", httpErr.Message)
}

type tagged struct {
	Name string `json:"name" validate:"required,min=2"`
}

func (t *tagged) Validate() error {
	return newVisitorValidator().Struct(t)
}

func TestBindAndValidate_TagErrors(t *testing.T) {
	e := echo.New()
	httpReq := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"A"}`))
	httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(httpReq, httptest.NewRecorder())

	err := BindAndValidate(c, &tagged{})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "name", httpErr.Errors[0].Field)
	assert.Equal(t, "must be at least 2 characters", httpErr.Errors[0].Error)
}
