package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/visitor-function/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, ConnectionFailure, MapCode("08006"))
	assert.Equal(t, UndefinedTable, MapCode("42P01"))
	assert.Equal(t, Other, MapCode("XX000"))
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityError, MapSeverity("whatever"))
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name: "pg unique violation",
			err: fmt.Errorf("insert: %w", &pgconn.PgError{
				Code: "23505", Severity: "ERROR", TableName: "visitors", ConstraintName: "visitors_pkey",
			}),
			wantStatus: http.StatusConflict,
			wantCode:   "VISITOR_ALREADY_EXISTS",
		},
		{
			name: "pg not null",
			err: &pgconn.PgError{
				Code: "23502", Severity: "ERROR", TableName: "visitors", ColumnName: "name",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VISITOR_REQUIRED",
		},
		{
			name:       "pg connection failure",
			err:        &pgconn.PgError{Code: "08006", Severity: "FATAL"},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name: "mongo duplicate key",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{
				{Code: 11000, Message: "E11000 duplicate key error"},
			}},
			wantStatus: http.StatusConflict,
			wantCode:   "RECORD_ALREADY_EXISTS",
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(tt.err), &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewMissingBodyError()
	assert.Same(t, original, HandleError(original))
}

func TestErrCode(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", ConvertPgError(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, UniqueViolation, ErrCode(wrapped))
	assert.Equal(t, Other, ErrCode(errors.New("x")))
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "id", extractColumnForUniqueViolation("visitors_id_pkey"))
	assert.Equal(t, "name", extractColumnForUniqueViolation("unique_visitors_name"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}
