package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-user-registration/internal/interface/http"
)

// AuthModule exposes registration, email verification and password recovery.
// Every route is public.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", m.Handler.Register)
	auth.POST("/verify/confirm", m.Handler.VerifyConfirm)
	auth.POST("/recovery", m.Handler.Recovery)
	auth.POST("/reset/confirm", m.Handler.ResetConfirm)
	auth.GET("/users/:id/verified", m.Handler.Verified)
}
