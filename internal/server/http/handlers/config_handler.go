package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// ConfigHandler exposes system settings to operators.
type ConfigHandler struct {
	facade ConfigFacade
}

// NewConfigHandler constructs ConfigHandler.
func NewConfigHandler(facade ConfigFacade) *ConfigHandler {
	return &ConfigHandler{facade: facade}
}

// List handles GET /api/admin/config.
func (h *ConfigHandler) List(c *gin.Context) {
	settings, err := h.facade.Settings(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.SettingResponse, 0, len(settings))
	for _, s := range settings {
		resp = append(resp, toSettingResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /api/admin/config/:key.
func (h *ConfigHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		badRequest(c, "value is required")
		return
	}

	setting, err := h.facade.UpdateSetting(c.Request.Context(), CurrentIdentity(c), c.Param("key"), *req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingResponse(*setting))
}

func toSettingResponse(s model.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		Type:      string(s.Type),
		Category:  s.Category,
		Min:       s.Min,
		Max:       s.Max,
		UpdatedAt: s.UpdatedAt,
		UpdatedBy: s.UpdatedBy,
	}
}
