// Package router wires handlers onto the versioned API surface.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. Routes registered through
// Register land behind the auth middleware; public routes (onboarding,
// login) are grouped separately so the middleware only guards
// tenant-facing surfaces.
type Router struct {
	engine           *gin.Engine
	apiVersion       string
	authMiddleware   []gin.HandlerFunc
	registrars       []RouteRegistrar
	publicRegistrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuthMiddleware sets the middleware chain guarding protected routes,
// applied in order.
func WithAuthMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMiddleware = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar behind the auth middleware.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterPublic adds a RouteRegistrar reachable without authentication.
func (r *Router) RegisterPublic(registrar RouteRegistrar) *Router {
	r.publicRegistrars = append(r.publicRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.publicRegistrars {
		registrar.RegisterRoutes(api)
	}

	protected := api.Group("")
	if len(r.authMiddleware) > 0 {
		protected.Use(r.authMiddleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(protected)
	}
}
