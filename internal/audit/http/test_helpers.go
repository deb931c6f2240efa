// Package http provides HTTP handlers for reading and verifying the audit
// ledger.
package http

import (
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// createTestContext creates a test Gin context with the given request. The
// ledger endpoints are read-only, so the request never carries a body.
func createTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, path, nil)
	c.Request = req

	return c, w
}
