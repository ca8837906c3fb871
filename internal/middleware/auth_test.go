package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"counseling-app-server/internal/config"
	"counseling-app-server/internal/models"
	"counseling-app-server/internal/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "access-secret",
		JWTRefreshSecret:          "refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 24,
	}
}

func tokensFor(t *testing.T, cfg *config.Config, role models.Role) (access, refresh string) {
	t.Helper()
	user := &models.User{Role: role}
	user.ID = "user-" + string(role)
	access, refresh, err := utils.GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	return access, refresh
}

// newRouter mounts /whoami behind AuthMiddleware and, when roles are given,
// RoleAuthMiddleware.
func newRouter(cfg *config.Config, roles ...models.Role) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		role, _ := GetUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/whoami", handlers...)
	return r
}

func do(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	access, refresh := tokensFor(t, cfg, models.RoleStudent)
	r := newRouter(cfg)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no scheme", access, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"tampered", "Bearer " + access + "x", http.StatusUnauthorized},
		{"valid", "Bearer " + access, http.StatusOK},
		{"lowercase scheme", "bearer " + access, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body)
			}
		})
	}

	w := do(r, "Bearer "+access)
	var body struct {
		ID   string      `json:"id"`
		Role models.Role `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != "user-student" || body.Role != models.RoleStudent {
		t.Errorf("context = %+v, want user-student/student", body)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header    string
		wantToken string
	}{
		{"Bearer abc.def", "abc.def"},
		{"  BEARER   abc.def ", "abc.def"},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Bearer a b", ""},
		{"Token abc.def", ""},
		{"", ""},
	}
	for _, tt := range tests {
		token, reason := bearerToken(tt.header)
		if token != tt.wantToken {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, token, tt.wantToken)
		}
		if (reason == "") != (tt.wantToken != "") {
			t.Errorf("bearerToken(%q) reason = %q", tt.header, reason)
		}
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newRouter(cfg, models.RoleCounselor, models.RoleAdmin)

	for role, want := range map[models.Role]int{
		models.RoleStudent:   http.StatusForbidden,
		models.RoleCounselor: http.StatusOK,
		models.RoleAdmin:     http.StatusOK,
	} {
		access, _ := tokensFor(t, cfg, role)
		if w := do(r, "Bearer "+access); w.Code != want {
			t.Errorf("%s: status = %d, want %d", role, w.Code, want)
		}
	}
}

func TestRoleAuthMiddlewareWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/whoami", RoleAuthMiddleware(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := do(r, ""); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
