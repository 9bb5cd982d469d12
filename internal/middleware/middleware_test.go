package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/upstream"
	appErrors "github.com/noah-isme/painel-admin-api/pkg/errors"
	"github.com/noah-isme/painel-admin-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s stubValidator) Validate(string) (*models.JWTClaims, error) {
	return s.claims, s.err
}

func newProtectedRouter(v tokenValidator, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/protected", JWT(v), RequireRoles(roles...), func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, gin.H{
			"token":   upstream.BearerToken(c.Request.Context()),
			"user":    c.GetString(logger.UserIDKey),
			"cache":   ExtractMeta(c)["cache_hit"],
			"hasUser": c.GetString(logger.UserRoleKey) != "",
		})
	})
	return r
}

func TestJWTAndRolesAllow(t *testing.T) {
	r := newProtectedRouter(stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"tok-1","user":"u1","cache":true,"hasUser":true}`, w.Body.String())
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	r := newProtectedRouter(stubValidator{}, models.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := newProtectedRouter(stubValidator{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesForbids(t *testing.T) {
	r := newProtectedRouter(stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAluno}}, models.RoleAdmin, models.RolePedagogico)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

type recordingHTTPObserver struct {
	paths []string
}

func (r *recordingHTTPObserver) ObserveHTTPRequest(_ string, path string, _ int, _ time.Duration) {
	r.paths = append(r.paths, path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingHTTPObserver{}
	r := gin.New()
	r.Use(Metrics(observer, "/metrics"))
	r.GET("/notas/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/notas/1", "/notas/2", "/metrics", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, []string{"/notas/:id", "/notas/:id", unmatchedRoute}, observer.paths)
}
