package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/aibuilder/aibuilder-backend/internal/api/http"
	"github.com/aibuilder/aibuilder-backend/internal/api/http/middleware"
	authhttp "github.com/aibuilder/aibuilder-backend/internal/auth/http"
	authmw "github.com/aibuilder/aibuilder-backend/internal/auth/middleware"
	authservice "github.com/aibuilder/aibuilder-backend/internal/auth/service"
	"github.com/aibuilder/aibuilder-backend/internal/generation"
	genhttp "github.com/aibuilder/aibuilder-backend/internal/generation/http"
	projecthttp "github.com/aibuilder/aibuilder-backend/internal/projects/http"
	projectservice "github.com/aibuilder/aibuilder-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Log            *zap.Logger
	Health         map[string]httpapi.Checker

	Authenticator *authmw.Authenticator
	AuthService   *authservice.AuthService
	AuthOptions   authhttp.Options
	Projects      *projectservice.ProjectService
	Generator     *generation.Generator
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(dep.Log), middleware.Recovery(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Health)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")
	requireUser := dep.Authenticator.RequireUser()

	authhttp.NewHandler(dep.AuthService, dep.AuthOptions).Register(api, requireUser)
	projecthttp.NewHandler(dep.Projects, dep.Log).Register(api, requireUser)
	genhttp.NewHandler(dep.Generator, dep.Projects, dep.Log).Register(api, requireUser)

	return r
}
