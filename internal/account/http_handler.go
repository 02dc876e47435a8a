package account

import (
	"errors"
	"net/http"

	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/config"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/gin-gonic/gin"
)

// HTTPHandler 账号边界：注册 / 登录。
// 角色字符串只在这里解析一次，之后全部走 auth.Role 封闭枚举和角色到存储的映射表，
// 业务 handler 不再按角色分支。
type HTTPHandler struct {
	stores  map[auth.Role]auth.AccountStore
	authCfg config.AuthConfig
	log     logger.Logger
}

func NewHTTPHandler(stores map[auth.Role]auth.AccountStore, authCfg config.AuthConfig, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{stores: stores, authCfg: authCfg, log: log}
}

// RegisterRoutes 注册账号路由（公开，免鉴权）。
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
}

type registerRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Password string `json:"password"`
}

type loginRequest struct {
	Role     string `json:"role"`
	Identity string `json:"identity"` // 邮箱（买家/经销商）或管理员用户名
	Password string `json:"password"`
}

func (h *HTTPHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	role, store, ok := h.resolve(req.Role)
	if !ok {
		server.Fail(c, http.StatusBadRequest, "unknown role")
		return
	}

	subject, err := store.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Location: req.Location,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountTaken):
			server.Fail(c, http.StatusBadRequest, "account already exists")
		case errors.Is(err, auth.ErrMissingField):
			server.Fail(c, http.StatusBadRequest, err.Error())
		default:
			if h.log != nil {
				h.log.Errorf("register role=%s failed: %v", role, err)
			}
			server.Fail(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	token, expiresAt, err := auth.GenerateAccessToken(h.authCfg, subject, role, h.authCfg.TokenTTL())
	if err != nil {
		if h.log != nil {
			h.log.Errorf("issue token failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	server.Created(c, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
		"role":         role,
	}, "Account created successfully")
}

func (h *HTTPHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	role, store, ok := h.resolve(req.Role)
	if !ok {
		server.Fail(c, http.StatusBadRequest, "unknown role")
		return
	}

	subject, err := store.Authenticate(c.Request.Context(), req.Identity, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			server.Fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if h.log != nil {
			h.log.Errorf("login role=%s failed: %v", role, err)
		}
		server.Fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	token, expiresAt, err := auth.GenerateAccessToken(h.authCfg, subject, role, h.authCfg.TokenTTL())
	if err != nil {
		if h.log != nil {
			h.log.Errorf("issue token failed: %v", err)
		}
		server.Fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	server.OK(c, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
		"role":         role,
	}, "Logged in successfully")
}

func (h *HTTPHandler) resolve(roleStr string) (auth.Role, auth.AccountStore, bool) {
	role, err := auth.ParseRole(roleStr)
	if err != nil {
		return "", nil, false
	}
	store, ok := h.stores[role]
	if !ok {
		return "", nil, false
	}
	return role, store, true
}
