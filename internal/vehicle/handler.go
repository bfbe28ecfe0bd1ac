package vehicle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler 车辆查询 HTTP 接口。
type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/vehicles/find", h.findByRegistration)
}

// findByRegistration 工单录入页的牌照查找（大小写不敏感）。
func (h *Handler) findByRegistration(c *gin.Context) {
	reg := NormalizeRegistration(c.Query("registration_no"))
	if strings.TrimSpace(reg) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "registration_no is required"})
		return
	}

	v, err := h.repo.FindByRegistrationWithCustomer(c.Request.Context(), reg)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		commonserver.AbortError(c, errs.NotFound("vehicle not found"))
		return
	}
	if err != nil {
		commonserver.AbortError(c, errs.Internal(err, "storage error"))
		return
	}
	c.JSON(http.StatusOK, v)
}
