package report

import (
	"net/http"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/gin-gonic/gin"
)

// Handler 报表接口。from/to 取 YYYY-MM-DD，缺省为最近 30 天。
type Handler struct {
	svc *Service
	clk clock.Clock
}

func NewHandler(svc *Service, clk clock.Clock) *Handler {
	return &Handler{svc: svc, clk: clk}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/reports", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	now := h.clk.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		// to 当天包含在窗口内
		to = t.AddDate(0, 0, 1)
	}

	sum, err := h.svc.Summarize(c.Request.Context(), from, to)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
