package job

import (
	"context"
	"net/http"
	"strconv"

	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/gin-gonic/gin"
)

// DetailSource 提供工单详情里的配件消耗与发票视图。
// 由库存/计费领域实现，避免工单包反向依赖它们。
type DetailSource interface {
	// BillingView 返回工单的配件消耗列表和发票；没有发票时 invoice 为 nil。
	BillingView(ctx context.Context, jobCardID string) (usages interface{}, invoice interface{}, err error)
}

// Handler 工单 HTTP 接口。创建与列表是两个独立操作，不共用序列化结构。
type Handler struct {
	svc    *Service
	detail DetailSource
}

func NewHandler(svc *Service, detail DetailSource) *Handler {
	return &Handler{svc: svc, detail: detail}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/jobcards", h.create)
	api.GET("/jobcards", h.list)
	api.GET("/jobcards/:id", h.get)
	api.PATCH("/jobcards/:id/status", h.updateStatus)
	api.GET("/my-jobs", h.myJobs)
	api.PATCH("/tasks/:id", h.updateTask)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateJobInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	j, err := h.svc.CreateJob(c.Request.Context(), in)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"jobcard_id": j.ID, "status": j.Status})
}

func (h *Handler) list(c *gin.Context) {
	page := 1
	size := 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && v > 0 && v <= 200 {
		size = v
	}
	f := ListFilter{
		MechanicID: c.Query("mechanic_id"),
		Status:     Status(c.Query("status")),
		Offset:     (page - 1) * size,
		Limit:      size,
	}

	jobs, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobcards": jobs, "total": total})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	j, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}

	out := gin.H{"jobcard": j}
	if h.detail != nil {
		usages, invoice, err := h.detail.BillingView(c.Request.Context(), j.ID)
		if err != nil {
			commonserver.AbortError(c, err)
			return
		}
		out["parts_used"] = usages
		// 未开票的工单 invoice 为 null，前端按"未结算"渲染
		out["invoice"] = invoice
	}
	c.JSON(http.StatusOK, out)
}

type updateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	j, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobcard": j})
}

// myJobs 当前登录技师的工单列表；未启用鉴权时退化为按 mechanic_id 查询。
func (h *Handler) myJobs(c *gin.Context) {
	mechanicID := c.Query("mechanic_id")
	if ai, ok := commonserver.AuthFromContext(c); ok && ai.Subject != "" {
		mechanicID = ai.Subject
	}
	if mechanicID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mechanic_id required"})
		return
	}

	jobs, total, err := h.svc.List(c.Request.Context(), ListFilter{MechanicID: mechanicID, Limit: 100})
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobcards": jobs, "total": total})
}

type updateTaskRequest struct {
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	t, err := h.svc.UpdateTask(c.Request.Context(), c.Param("id"), req.Completed, req.Notes)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}
