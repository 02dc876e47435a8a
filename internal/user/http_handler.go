package user

import (
	"errors"
	"net/http"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HTTPHandler 买家自助接口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// RegisterRoutes 注册买家路由（需买家角色）。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/users", server.RequireRole(auth.RoleBuyer))
	g.GET("/me/vehicles", h.myVehicles)
}

func (h *HTTPHandler) myVehicles(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	owned, err := h.svc.OwnedVehicles(c.Request.Context(), ai.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		if h.log != nil {
			h.log.Errorf("list owned vehicles failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to fetch vehicles")
		return
	}
	server.OK(c, gin.H{"vehicles": owned}, "Vehicles owned by user retrieved successfully")
}
