package admin

import (
	"errors"
	"net/http"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HTTPHandler 管理员自助接口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterRoutes 注册管理员路由（需管理员角色）。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/admin", server.RequireRole(auth.RoleAdmin))
	g.POST("/password", h.changePassword)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *HTTPHandler) changePassword(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), ai.Subject, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		server.OK(c, nil, "Password changed successfully")
	case errors.Is(err, auth.ErrBadCredentials):
		server.Fail(c, http.StatusBadRequest, "old password is incorrect")
	case errors.Is(err, auth.ErrMissingField):
		server.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		server.Fail(c, http.StatusNotFound, "admin not found")
	default:
		if h.log != nil {
			h.log.Errorf("change password failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to change password")
	}
}
