package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/pkg/response"
)

// MaxRequestBody caps the body of any write request.
const MaxRequestBody = 1 << 20

var sensitiveKeys = map[string]bool{
	"password": true,
	"refresh":  true,
	"access":   true,
	"token":    true,
}

// AuditLog records write requests (POST, PUT, PATCH, DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			c.Next()
			return
		}

		var body interface{}
		if c.Request.Body != nil {
			raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBody))
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response.Response{
					Code:    http.StatusRequestEntityTooLarge,
					Message: "request body too large",
				})
			} else {
				c.Request.Body = io.NopCloser(bytes.NewReader(raw))
				body = auditBody(c.ContentType(), raw)
			}
		}

		if !c.IsAborted() {
			c.Next()
		}

		status := c.Writer.Status()
		var uid *uint
		if userID := GetUserID(c); userID > 0 {
			uid = &userID
		}
		entry := services.AuditEntry{
			Module:     routeResource(c.FullPath()),
			Action:     auditAction(method),
			Message:    fmt.Sprintf("%s %s %s -> %d", GetUsername(c), method, c.Request.URL.Path, status),
			UserID:     uid,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			StatusCode: status,
			Extra: map[string]interface{}{
				"path": c.Request.URL.Path,
				"body": body,
			},
		}

		switch {
		case status >= 500:
			services.LogError(entry)
		case status >= 400:
			services.LogWarning(entry)
		default:
			services.LogInfo(entry)
		}
	}
}

// routeResource names the innermost collection of a route pattern:
// "/api/projects/:project_id/issues/:issue_id" gives "issues".
func routeResource(fullPath string) string {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" && !strings.HasPrefix(parts[i], ":") && parts[i] != "api" {
			return parts[i]
		}
	}
	return "unknown"
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut:
		return "update"
	case http.MethodPatch:
		return "partial_update"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// auditBody keeps a JSON or form body with credential fields masked. Any
// other payload is reduced to its size.
func auditBody(contentType string, raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType == "application/x-www-form-urlencoded" {
		if form, err := url.ParseQuery(string(raw)); err == nil {
			fields := make(map[string]interface{}, len(form))
			for k, v := range form {
				fields[k] = v
			}
			return maskFields(fields)
		}
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Sprintf("[%d bytes omitted]", len(raw))
	}
	return maskValue(decoded)
}

func maskValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return maskFields(t)
	case []interface{}:
		for i := range t {
			t[i] = maskValue(t[i])
		}
		return t
	default:
		return v
	}
}

func maskFields(fields map[string]interface{}) map[string]interface{} {
	for k, v := range fields {
		if sensitiveKeys[strings.ToLower(k)] {
			fields[k] = "***"
			continue
		}
		fields[k] = maskValue(v)
	}
	return fields
}
