package router

import (
	handlers "github.com/oksasatya/go-ddd-user-registration/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-registration/internal/router/modules"
)

// ModuleDeps carries what the feature modules are built from.
type ModuleDeps struct {
	Auth         *handlers.AuthHandler
	DebugMetrics bool
}

// InitModules adds every enabled module to r. Call once at start-up, before RegisterAll.
func InitModules(r *Registry, deps ModuleDeps) {
	r.Add(modules.NewAuthModule(deps.Auth))
	if deps.DebugMetrics {
		r.Add(modules.NewDebugModule())
	}
}
