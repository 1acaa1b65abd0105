package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/services"
	"github.com/softdesk/softdesk-api/internal/testutil"
	"github.com/softdesk/softdesk-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("routes-test-secret")
}

type envelope struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type pageBody struct {
	Count    int64             `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := config.DefaultConfig()
	cfg.RateLimit.Enabled = false
	svc := newAppServices(cfg, db)
	t.Cleanup(func() {
		svc.shutdown()
		services.InitSystemLogger(nil)
	})
	return &apiClient{t: t, router: newRouter(svc), db: db}
}

func (a *apiClient) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signup registers a user and returns an access token for it.
func (a *apiClient) signup(username string) (uint, string) {
	a.t.Helper()
	w, env := a.do("POST", "/api/users", "", gin.H{"username": username, "password": "password123"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		ID uint `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &user))

	w, env = a.do("POST", "/api/token", "", gin.H{"username": username, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var pair struct {
		Access string `json:"access"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(a.t, pair.Access)
	return user.ID, pair.Access
}

func (a *apiClient) createProject(token, name string) uint {
	a.t.Helper()
	w, env := a.do("POST", "/api/projects", token, gin.H{"name": name, "type": "BACKEND"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var p struct {
		ID uint `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &p))
	return p.ID
}

func decodePage(t *testing.T, env envelope) pageBody {
	t.Helper()
	var page pageBody
	require.NoError(t, json.Unmarshal(env.Data, &page))
	return page
}

func TestProjectVisibilityFollowsMembership(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")

	w, env := api.do("GET", "/api/projects", tok1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodePage(t, env).Count)

	api.createProject(tok1, "P")

	w, env = api.do("GET", "/api/projects", tok1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodePage(t, env)
	require.EqualValues(t, 1, page.Count)
	var project struct {
		Name   string `json:"name"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(page.Results[0], &project))
	assert.Equal(t, "P", project.Name)
	assert.Equal(t, "u1", project.Author.Username)

	_, tok2 := api.signup("u2")
	_, env = api.do("GET", "/api/projects", tok2, nil)
	assert.EqualValues(t, 0, decodePage(t, env).Count)
}

func TestAnonymousRequestsAreUnauthorized(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/projects", "/api/users/me", "/api/projects/1/issues"} {
		w, _ := api.do("GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w, _ := api.do("GET", "/api/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do("GET", "/api/users", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "user listing is open")
}

func TestContributorCannotDeleteOthersIssue(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	u2, tok2 := api.signup("u2")
	projectID := api.createProject(tok1, "P")

	w, _ := api.do("POST", fmt.Sprintf("/api/projects/%d/contributors", projectID), tok1, gin.H{"user": u2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := api.do("POST", fmt.Sprintf("/api/projects/%d/issues", projectID), tok1, gin.H{"title": "crash", "tag": "BUG"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var issue struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &issue))
	assert.Equal(t, "TODO", issue.Status)

	issuePath := fmt.Sprintf("/api/projects/%d/issues/%d", projectID, issue.ID)
	w, _ = api.do("DELETE", issuePath, tok2, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do("GET", issuePath, tok2, nil)
	assert.Equal(t, http.StatusOK, w.Code, "the issue survives and stays readable")

	w, _ = api.do("DELETE", issuePath, tok1, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestDuplicateContributorIsRejected(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	u2, _ := api.signup("u2")
	projectID := api.createProject(tok1, "P")
	path := fmt.Sprintf("/api/projects/%d/contributors", projectID)

	w, _ := api.do("POST", path, tok1, gin.H{"user": u2})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := api.do("POST", path, tok1, gin.H{"user": u2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "non_field_errors")
}

func TestProjectListingPaginates(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	for i := 0; i < 15; i++ {
		api.createProject(tok1, fmt.Sprintf("P%d", i))
	}

	w, env := api.do("GET", "/api/projects", tok1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decodePage(t, env)
	assert.EqualValues(t, 15, first.Count)
	assert.Len(t, first.Results, 10)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://example.com/api/projects?page=2", *first.Next)
	assert.Nil(t, first.Previous)

	w, env = api.do("GET", "/api/projects?page=2", tok1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodePage(t, env)
	assert.Len(t, second.Results, 5)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://example.com/api/projects", *second.Previous)

	w, _ = api.do("GET", "/api/projects?page=3", tok1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentUnderWrongIssueIsNotFound(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	p1 := api.createProject(tok1, "P1")
	p2 := api.createProject(tok1, "P2")

	mkIssue := func(projectID uint) uint {
		w, env := api.do("POST", fmt.Sprintf("/api/projects/%d/issues", projectID), tok1, gin.H{"title": "t", "tag": "TASK"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var issue struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &issue))
		return issue.ID
	}
	i1 := mkIssue(p1)
	i2 := mkIssue(p2)

	w, env := api.do("POST", fmt.Sprintf("/api/projects/%d/issues/%d/comments", p1, i1), tok1, gin.H{"description": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment struct {
		UUID string `json:"uuid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comment))
	require.NotEmpty(t, comment.UUID)

	w, _ = api.do("GET", fmt.Sprintf("/api/projects/%d/issues/%d/comments/%s", p2, i2, comment.UUID), tok1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do("GET", fmt.Sprintf("/api/projects/%d/issues/%d/comments/%s", p1, i1, comment.UUID), tok1, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do("GET", fmt.Sprintf("/api/projects/%d/issues/%d/comments/not-a-uuid", p1, i1), tok1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletingProjectRemovesDescendants(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	projectID := api.createProject(tok1, "P")
	w, _ := api.do("POST", fmt.Sprintf("/api/projects/%d/issues", projectID), tok1, gin.H{"title": "t", "tag": "BUG"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = api.do("DELETE", fmt.Sprintf("/api/projects/%d", projectID), tok1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var n int64
	api.db.Model(&models.Issue{}).Count(&n)
	assert.Zero(t, n)
	api.db.Model(&models.Contributor{}).Count(&n)
	assert.Zero(t, n)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	api := newAPI(t)
	bobID, bob := api.signup("bob")

	w, _ := api.do("DELETE", fmt.Sprintf("/api/users/%d", bobID), bob, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do("POST", "/api/projects", bob, gin.H{"name": "orphan", "type": "BACKEND"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.do("GET", "/api/users/me", bob, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var n int64
	api.db.Model(&models.Project{}).Count(&n)
	assert.Zero(t, n)
	api.db.Model(&models.Contributor{}).Count(&n)
	assert.Zero(t, n)
}

func TestRegistrationValidation(t *testing.T) {
	api := newAPI(t)

	w, env := api.do("POST", "/api/users", "", gin.H{"username": "kid", "password": "password123", "date_birth": "2099-01-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "date_birth")

	w, env = api.do("POST", "/api/users", "", gin.H{"username": "short", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "password")

	w, env = api.do("POST", "/api/users", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "username")
}

func TestPutRequiresAllFieldsPatchDoesNot(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	projectID := api.createProject(tok1, "P")
	path := fmt.Sprintf("/api/projects/%d", projectID)

	w, env := api.do("PUT", path, tok1, gin.H{"description": "only this"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "type")

	w, env = api.do("PATCH", path, tok1, gin.H{"description": "only this"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var project struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, "P", project.Name)
	assert.Equal(t, "only this", project.Description)
}

func TestMethodNotAllowedAndUnknownRoutes(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")

	w, _ := api.do("DELETE", "/api/projects", tok1, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w, _ = api.do("POST", "/api/choices/issues", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w, _ = api.do("GET", "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do("GET", "/api/projects/abc", tok1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChoicesHealthAndMetrics(t *testing.T) {
	api := newAPI(t)

	w, env := api.do("GET", "/api/choices/issues", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var choices map[string][]string
	require.NoError(t, json.Unmarshal(env.Data, &choices))
	assert.Equal(t, []string{"TODO", "INPROGRESS", "FINISHED"}, choices["status"])

	w, _ = api.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do("GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "softdesk_http_requests_total")
}

func TestTokenRefreshFlow(t *testing.T) {
	api := newAPI(t)
	api.signup("u1")

	_, env := api.do("POST", "/api/token", "", gin.H{"username": "u1", "password": "password123"})
	var pair struct {
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pair))

	w, _ := api.do("POST", "/api/token/refresh", "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do("POST", "/api/token/refresh", "", gin.H{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "a rotated token cannot be reused")

	w, _ = api.do("POST", "/api/token", "", gin.H{"username": "u1", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWritesAreAudited(t *testing.T) {
	api := newAPI(t)
	_, tok1 := api.signup("u1")
	api.createProject(tok1, "P")

	var logs []models.SystemLog
	require.NoError(t, api.db.Where("module = ?", "projects").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "create", logs[0].Action)
	assert.Equal(t, http.StatusCreated, logs[0].StatusCode)
	assert.NotContains(t, logs[0].Extra, "password123")
}
