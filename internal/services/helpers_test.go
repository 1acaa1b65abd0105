package services

import (
	"net/http"
	"testing"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGate(db *gorm.DB) *authz.Gate {
	return authz.NewGate(authz.NewDBResolver(db), nil)
}

func firstPage() response.PageRequest {
	return response.PageRequest{Number: 1}
}

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }
func boolPtr(b bool) *bool    { return &b }

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Truef(t, response.IsStatus(err, status), "expected HTTP %d, got %v", status, err)
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	assertStatus(t, err, http.StatusBadRequest)
	var appErr *response.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, field)
}
