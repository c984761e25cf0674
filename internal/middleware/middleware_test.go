package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/auth"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

type roleTable map[string]models.Role

func (r roleTable) GetByID(_ context.Context, id string) (models.User, error) {
	role, ok := r[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return models.User{ID: id, Role: role}, nil
}

func newRouter(tokens *auth.Tokens, roles roleTable) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Auth(tokens), AdminOnly(roles), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserRole))
	})
	r.GET("/maybe", OptionalAuth(tokens), func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminOnly(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newRouter(tokens, roleTable{"admin-1": models.RoleAdmin, "cust-1": models.RoleCustomer})

	adminToken, err := tokens.Generate("admin-1", models.RoleAdmin)
	require.NoError(t, err)
	customerToken, err := tokens.Generate("cust-1", models.RoleCustomer)
	require.NoError(t, err)

	rec := do(r, "/admin", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", customerToken).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "garbage").Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := newRouter(tokens, roleTable{})

	token, err := tokens.Generate("cust-1", models.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, "cust-1", do(r, "/maybe", token).Body.String())

	rec := do(r, "/maybe", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("http://localhost:5173"))
	r.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/v1/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestFunctionSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	call := func(secret, header string) int {
		r := gin.New()
		r.POST("/fn", FunctionSecret(secret), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodPost, "/fn", nil)
		if header != "" {
			req.Header.Set(email.FunctionSecretHeader, header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("s3cret", "s3cret"))
	assert.Equal(t, http.StatusUnauthorized, call("s3cret", ""))
	assert.Equal(t, http.StatusUnauthorized, call("s3cret", "s3cre"))
	assert.Equal(t, http.StatusUnauthorized, call("", ""))
}
