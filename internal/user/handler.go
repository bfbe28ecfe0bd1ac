package user

import (
	"net/http"

	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 用户相关 HTTP 接口。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 挂载路由。
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/login", h.login)
	api.POST("/users", h.register)
	api.GET("/users/mechanics", h.listMechanics)
	api.GET("/users/:id", h.getProfile)
	api.POST("/users/:id/change-pin", h.changePIN)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	PIN      string `json:"pin" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and pin required"})
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.PIN)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}

	out := gin.H{"user": res.User}
	if res.AccessToken != "" {
		out["access_token"] = res.AccessToken
		out["expires_at"] = res.ExpiresAt.Unix()
	}
	c.JSON(http.StatusOK, out)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role" binding:"required"`
	PIN      string `json:"pin" binding:"required"`
}

// register 管理端建账号（技师入职）。
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, full_name, role and pin required"})
		return
	}
	u, err := h.svc.Register(c.Request.Context(), &User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		PIN:      req.PIN,
	})
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *Handler) listMechanics(c *gin.Context) {
	ms, err := h.svc.ListMechanics(c.Request.Context())
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mechanics": ms})
}

func (h *Handler) getProfile(c *gin.Context) {
	u, err := h.svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type changePINRequest struct {
	OldPIN string `json:"old_pin" binding:"required"`
	NewPIN string `json:"new_pin" binding:"required"`
}

func (h *Handler) changePIN(c *gin.Context) {
	var req changePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old_pin and new_pin required"})
		return
	}
	if err := h.svc.ChangePIN(c.Request.Context(), c.Param("id"), req.OldPIN, req.NewPIN); err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "pin updated"})
}
