package deal

import (
	"context"
	"errors"
	"net/http"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/middleware"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
)

// CatalogInvalidator 成交后触发目录缓存失效（车辆已出库）。
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// HTTPHandler 报价与购买的 HTTP 接入层。
type HTTPHandler struct {
	svc         *Service
	coordinator *Coordinator
	limiter     middleware.RateLimiter
	catalog     CatalogInvalidator
	log         logger.Logger
}

func NewHTTPHandler(svc *Service, coordinator *Coordinator, limiter middleware.RateLimiter, catalog CatalogInvalidator, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, coordinator: coordinator, limiter: limiter, catalog: catalog, log: log}
}

// RegisterRoutes 注册报价路由。购买接口限买家角色并挂限流。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	purchase := api.Group("/deals")
	purchase.POST("/purchase", server.RequireRole(auth.RoleBuyer), server.RateLimitMiddleware(h.limiter), h.purchase)

	api.POST("/dealerships/deals", server.RequireRole(auth.RoleDealer), h.addDeal)
	api.GET("/dealerships/:id/deals", h.dealsByDealership)
	api.GET("/cars/:id/deals", h.openDealsByCar)
}

type purchaseRequest struct {
	DealID string `json:"deal_id"`
}

func (h *HTTPHandler) purchase(c *gin.Context) {
	info, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.coordinator.Purchase(c.Request.Context(), PurchaseInput{
		BuyerID: info.Subject,
		DealID:  req.DealID,
	})
	if err != nil {
		h.failPurchase(c, err)
		return
	}
	if h.catalog != nil {
		h.catalog.Invalidate(c.Request.Context())
	}

	server.OK(c, gin.H{
		"record": result.Record,
		"deal":   result.Deal,
		"price":  result.Price,
	}, "Vehicle purchased successfully")
}

// failPurchase 把协调器错误分类映射到 HTTP 状态码。
func (h *HTTPHandler) failPurchase(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		server.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		server.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnavailable):
		server.Fail(c, http.StatusConflict, "deal no longer available")
	case errors.Is(err, ErrTransient):
		server.Fail(c, http.StatusServiceUnavailable, "purchase temporarily unavailable, please retry")
	default:
		if h.log != nil {
			h.log.Errorf("purchase failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "purchase failed")
	}
}

type addDealRequest struct {
	CarID       string `json:"car_id"`
	Price       int64  `json:"price"`
	Discount    int64  `json:"discount"`
	Description string `json:"description"`
}

func (h *HTTPHandler) addDeal(c *gin.Context) {
	info, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req addDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.svc.AddDeal(c.Request.Context(), AddDealInput{
		DealershipID: info.Subject,
		CarID:        req.CarID,
		Price:        req.Price,
		Discount:     req.Discount,
		Description:  req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			server.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			server.Fail(c, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrUnavailable):
			server.Fail(c, http.StatusConflict, err.Error())
		default:
			if h.log != nil {
				h.log.Errorf("add deal failed: %v", err)
			}
			server.Fail(c, http.StatusInternalServerError, "failed to add deal")
		}
		return
	}
	server.Created(c, d, "Deal created successfully")
}

func (h *HTTPHandler) dealsByDealership(c *gin.Context) {
	deals, err := h.svc.DealsByDealership(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			server.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		server.Fail(c, http.StatusInternalServerError, "failed to list deals")
		return
	}
	server.OK(c, deals, "")
}

func (h *HTTPHandler) openDealsByCar(c *gin.Context) {
	deals, err := h.svc.OpenDealsByCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			server.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		server.Fail(c, http.StatusInternalServerError, "failed to list deals")
		return
	}
	server.OK(c, deals, "")
}
