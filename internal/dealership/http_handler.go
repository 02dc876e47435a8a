package dealership

import (
	"context"
	"errors"
	"net/http"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogInvalidator 上架车辆后触发目录缓存失效。
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// HTTPHandler 经销商接口。
type HTTPHandler struct {
	svc     *Service
	catalog CatalogInvalidator
	log     logger.Logger
}

func NewHTTPHandler(svc *Service, catalog CatalogInvalidator, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, catalog: catalog, log: log}
}

// RegisterRoutes 注册经销商路由。
// 自助操作需经销商角色；按 id 的库存/交易查询为公开目录读。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/dealerships", server.RequireRole(auth.RoleDealer))
	g.POST("/cars", h.addCar)
	g.GET("/sold-vehicles", h.soldVehicles)

	api.GET("/dealerships/:id/cars", h.carsOf)
	api.GET("/cars/:id/dealerships", h.dealershipsForCar)
}

type addCarRequest struct {
	Type  string                 `json:"type"`
	Name  string                 `json:"name"`
	Model string                 `json:"model"`
	Info  map[string]interface{} `json:"car_info"`
}

func (h *HTTPHandler) addCar(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req addCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	newCar, err := h.svc.AddCar(c.Request.Context(), ai.Subject, AddCarInput{
		Type:  req.Type,
		Name:  req.Name,
		Model: req.Model,
		Info:  req.Info,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.Fail(c, http.StatusNotFound, "dealership not found")
			return
		}
		server.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.catalog != nil {
		h.catalog.Invalidate(c.Request.Context())
	}
	server.OK(c, gin.H{"new_car": newCar}, "Car added to dealership successfully")
}

func (h *HTTPHandler) soldVehicles(c *gin.Context) {
	ai, ok := server.AuthFromContext(c)
	if !ok {
		server.Fail(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	records, err := h.svc.SoldVehicles(c.Request.Context(), ai.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.Fail(c, http.StatusNotFound, "Dealership not found")
			return
		}
		if h.log != nil {
			h.log.Errorf("list sold vehicles failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to fetch sold vehicles")
		return
	}
	server.OK(c, gin.H{"sold_vehicles": records}, "Sold vehicles with owner info retrieved successfully")
}

func (h *HTTPHandler) carsOf(c *gin.Context) {
	cars, err := h.svc.ListCars(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			server.Fail(c, http.StatusNotFound, "Dealership not found")
			return
		}
		if h.log != nil {
			h.log.Errorf("list dealership cars failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to fetch cars")
		return
	}
	server.OK(c, gin.H{"cars": cars}, "Cars fetched Successfully")
}

func (h *HTTPHandler) dealershipsForCar(c *gin.Context) {
	dealerships, err := h.svc.DealershipsForCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if h.log != nil {
			h.log.Errorf("list dealerships for car failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to fetch dealerships")
		return
	}
	server.OK(c, gin.H{"dealerships": dealerships}, "Dealerships with the specified car fetched successfully")
}
