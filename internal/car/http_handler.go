package car

import (
	"context"
	"net/http"
	"strconv"

	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 车辆目录的只读接口。
type HTTPHandler struct {
	repo  *Repo
	cache *CatalogCache
	log   logger.Logger
}

func NewHTTPHandler(repo *Repo, cache *CatalogCache, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, cache: cache, log: log}
}

// RegisterRoutes 注册目录路由（任意已登录角色可读）。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/cars", h.listCars)
}

func (h *HTTPHandler) listCars(c *gin.Context) {
	ctx := c.Request.Context()

	// 无分页参数时走全量目录缓存
	offset, limit := pagination(c)
	if offset == 0 && limit == 0 {
		if cars, ok := h.cache.Get(ctx); ok {
			server.OK(c, gin.H{"cars": cars, "total": len(cars)}, "All cars fetched successfully")
			return
		}
	}

	cars, total, err := h.repo.ListAll(ctx, offset, limit)
	if err != nil {
		if h.log != nil {
			h.log.Errorf("list cars failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to fetch cars")
		return
	}

	if offset == 0 && limit == 0 {
		h.cache.Set(ctx, cars)
	}
	server.OK(c, gin.H{"cars": cars, "total": total}, "All cars fetched successfully")
}

// Invalidate 供其他模块（加车/成交）触发目录缓存失效。
func (h *HTTPHandler) Invalidate(ctx context.Context) {
	h.cache.Invalidate(ctx)
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	return offset, limit
}
