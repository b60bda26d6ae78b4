package http

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/internal/projects/domain"
	"github.com/aibuilder/aibuilder-backend/internal/projects/service"
)

type Handler struct {
	svc *service.ProjectService
	log *zap.Logger
}

func NewHandler(svc *service.ProjectService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type createProjectReq struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Description string          `json:"description" binding:"max=2000"`
	Components  json.RawMessage `json:"components" binding:"omitempty,jsonarray"`
	HTMLCode    string          `json:"htmlCode"`
	CSSCode     string          `json:"cssCode"`
	JSCode      string          `json:"jsCode"`
}

func (r createProjectReq) toDomain(userID string) domain.NewProject {
	return domain.NewProject{
		Title:       r.Title,
		Description: r.Description,
		UserID:      userID,
		Components:  r.Components,
		HTMLCode:    r.HTMLCode,
		CSSCode:     r.CSSCode,
		JSCode:      r.JSCode,
	}
}

// updateProjectReq is partial: omitted fields keep their stored value.
type updateProjectReq struct {
	Title       *string         `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string         `json:"description" binding:"omitempty,max=2000"`
	Components  json.RawMessage `json:"components" binding:"omitempty,jsonarray"`
	HTMLCode    *string         `json:"htmlCode"`
	CSSCode     *string         `json:"cssCode"`
	JSCode      *string         `json:"jsCode"`
}

func (r updateProjectReq) toDomain() domain.ProjectUpdate {
	return domain.ProjectUpdate{
		Title:       r.Title,
		Description: r.Description,
		Components:  r.Components,
		HTMLCode:    r.HTMLCode,
		CSSCode:     r.CSSCode,
		JSCode:      r.JSCode,
	}
}

type createEndpointReq struct {
	Method      string `json:"method" binding:"required,oneof=GET POST PUT PATCH DELETE"`
	Path        string `json:"path" binding:"required,max=255,apipath"`
	Description string `json:"description" binding:"max=1000"`
}

type updateEndpointReq struct {
	Method      *string `json:"method" binding:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Path        *string `json:"path" binding:"omitempty,max=255,apipath"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type publishResp struct {
	Project *domain.Project `json:"project"`
	URL     string          `json:"url"`
}
