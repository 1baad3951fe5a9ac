package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/service"
	apperrors "invest-portal/pkg/errors"
	"invest-portal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockEntitlementService struct {
	ent *service.Entitlement
	err error
}

func (m *mockEntitlementService) Resolve(_ context.Context, _ string) (*service.Entitlement, error) {
	return m.ent, m.err
}

func setupEntitlementRouter(svc service.EntitlementService, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{
		func(c *gin.Context) { c.Set(CtxUserID, "u-1") },
		Entitlement(svc),
	}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *gin.Context) { response.OK(c, nil) })
	r.GET("/probe", handlers...)
	return r
}

func perform(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEntitlementExpiredAccount(t *testing.T) {
	r := setupEntitlementRouter(&mockEntitlementService{
		err: &apperrors.AccountExpiredError{ExpiresAt: time.Now().Add(-time.Hour)},
	})

	w := perform(r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != 11002 {
		t.Errorf("业务码 = %d, want 11002", resp.Code)
	}
	if resp.Details != "ACCOUNT_EXPIRED" {
		t.Errorf("Details = %q, want ACCOUNT_EXPIRED", resp.Details)
	}
}

func TestEntitlementDeletedAccount(t *testing.T) {
	r := setupEntitlementRouter(&mockEntitlementService{err: service.ErrUserNotFound})

	if w := perform(r); w.Code != http.StatusUnauthorized {
		t.Fatalf("被删除账户应 401, got %d", w.Code)
	}
}

func TestEntitlementIntegrityDenied(t *testing.T) {
	r := setupEntitlementRouter(&mockEntitlementService{err: service.ErrEntitlementIntegrity})

	if w := perform(r); w.Code != http.StatusForbidden {
		t.Fatalf("行业集合异常应 403, got %d", w.Code)
	}
}

func TestAdminOnlyRejectsUser(t *testing.T) {
	r := setupEntitlementRouter(&mockEntitlementService{
		ent: &service.Entitlement{UserID: "u-1", Role: "user", Industries: []string{"人工智能"}},
	}, AdminOnly())

	if w := perform(r); w.Code != http.StatusForbidden {
		t.Fatalf("普通用户访问管理端应 403, got %d", w.Code)
	}
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	r := setupEntitlementRouter(&mockEntitlementService{
		ent: &service.Entitlement{UserID: "a-1", Role: "admin", Unrestricted: true},
	}, AdminOnly())

	if w := perform(r); w.Code != http.StatusOK {
		t.Fatalf("管理员应放行, got %d", w.Code)
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	r := gin.New()
	r.GET("/probe", JWTAuth(nil, nil), func(c *gin.Context) { response.OK(c, nil) })

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("缺少认证头应 401, got %d", w.Code)
	}
}
