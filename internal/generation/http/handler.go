package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/api/http/respond"
	"github.com/aibuilder/aibuilder-backend/internal/auth"
	"github.com/aibuilder/aibuilder-backend/internal/generation"
	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
)

// ProjectCreator stores the project produced by build-from-prompt.
type ProjectCreator interface {
	Create(ctx context.Context, in domain.NewProject) (*domain.Project, error)
}

type Handler struct {
	gen      *generation.Generator
	projects ProjectCreator
	log      *zap.Logger
}

func NewHandler(gen *generation.Generator, projects ProjectCreator, log *zap.Logger) *Handler {
	return &Handler{gen: gen, projects: projects, log: log}
}

func (h *Handler) Register(api gin.IRouter, requireUser gin.HandlerFunc) {
	rg := api.Group("/ai", requireUser)
	rg.POST("/generate-component", h.generateComponent)
	rg.POST("/generate-backend", h.generateBackend)
	rg.POST("/build-from-prompt", h.buildFromPrompt)
	rg.POST("/optimize-code", h.optimizeCode)
}

type componentReq struct {
	ComponentType    string `json:"componentType"`
	Framework        string `json:"framework"`
	StylePreferences string `json:"stylePreferences"`
}

type componentResp struct {
	Code          string `json:"code"`
	ComponentType string `json:"componentType"`
	Framework     string `json:"framework"`
}

func (h *Handler) generateComponent(c *gin.Context) {
	var req componentReq
	err := c.ShouldBindJSON(&req)
	if err != nil || blank(req.ComponentType, req.Framework, req.StylePreferences) {
		respond.Message(c, http.StatusBadRequest, "Missing required fields: componentType, framework, stylePreferences")
		return
	}

	code := h.gen.GenerateComponent(c.Request.Context(), req.ComponentType, req.Framework, req.StylePreferences)
	c.JSON(http.StatusOK, componentResp{
		Code:          code,
		ComponentType: req.ComponentType,
		Framework:     req.Framework,
	})
}

type backendReq struct {
	Database  string               `json:"database"`
	Framework string               `json:"framework"`
	Features  *generation.Features `json:"features"`
}

type backendResp struct {
	generation.Backend
	Database  string `json:"database"`
	Framework string `json:"framework"`
}

func (h *Handler) generateBackend(c *gin.Context) {
	var req backendReq
	err := c.ShouldBindJSON(&req)
	if err != nil || blank(req.Database, req.Framework) || req.Features == nil {
		respond.Message(c, http.StatusBadRequest, "Missing required fields: database, framework, features")
		return
	}

	out := h.gen.GenerateBackend(c.Request.Context(), req.Database, req.Framework, *req.Features)
	c.JSON(http.StatusOK, backendResp{
		Backend:   out,
		Database:  req.Database,
		Framework: req.Framework,
	})
}

type buildReq struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

type buildResp struct {
	Project   *domain.Project    `json:"project"`
	Generated generation.Website `json:"generated"`
}

func (h *Handler) buildFromPrompt(c *gin.Context) {
	var req buildReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		respond.Message(c, http.StatusBadRequest, "A valid prompt is required")
		return
	}
	ctx := c.Request.Context()
	site := h.gen.BuildFromPrompt(ctx, req.Prompt, generation.ParseMode(req.Mode))

	p, err := h.projects.Create(ctx, domain.NewProject{
		Title:       site.Title,
		Description: site.Description,
		UserID:      auth.UserID(c),
		Components:  site.Components,
		HTMLCode:    site.HTMLCode,
		CSSCode:     site.CSSCode,
		JSCode:      site.JSCode,
	})
	if errors.Is(err, domain.ErrOwnerNotFound) {
		respond.Message(c, http.StatusConflict, domain.OwnerNotSyncedMessage)
		return
	}
	if err != nil {
		h.log.Error("store generated project", zap.String("user_id", auth.UserID(c)), zap.Error(err))
		respond.Message(c, http.StatusInternalServerError, "Failed to build from prompt. Please check your API key and try again.")
		return
	}

	c.JSON(http.StatusOK, buildResp{Project: p, Generated: site})
}

type optimizeReq struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

func (h *Handler) optimizeCode(c *gin.Context) {
	var req optimizeReq
	if err := c.ShouldBindJSON(&req); err != nil || blank(req.Code) {
		respond.Message(c, http.StatusBadRequest, "Missing required fields: code")
		return
	}
	kind := req.Type
	if kind == "" {
		kind = "component"
	}
	c.JSON(http.StatusOK, gin.H{"code": h.gen.OptimizeCode(c.Request.Context(), req.Code, kind)})
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
