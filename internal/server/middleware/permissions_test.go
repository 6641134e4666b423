package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name string
		user *AppUser
		want int
	}{
		{name: "no user", user: nil, want: http.StatusUnauthorized},
		{name: "missing permission", user: &AppUser{UserID: 2, Role: "user"}, want: http.StatusForbidden},
		{name: "granted permission", user: &AppUser{UserID: 3, Role: "user", Permissions: []string{PermissionAnnotationUpdate}}, want: http.StatusOK},
		{name: "admin without permission list", user: &AppUser{UserID: 4, Role: "admin"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPatch, "/", nil)
			rec := httptest.NewRecorder()
			c := &AppContext{Context: e.NewContext(req, rec), App: &App{}, User: tt.user}

			h := RequirePermission(PermissionAnnotationUpdate)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			assert.NoError(t, h(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(&AppUser{Role: "admin"}))
	assert.False(t, IsAdmin(&AppUser{Role: "user"}))
	assert.False(t, IsAdmin(nil))
}
