package inventory

import (
	"net/http"

	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler 配件与发料 HTTP 接口。
type Handler struct {
	ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/parts", h.listParts)
	api.POST("/parts", h.createPart)
	api.GET("/parts/:id", h.getPart)
	api.PUT("/parts/:id", h.updatePart)
	api.DELETE("/parts/:id", h.deletePart)
	api.POST("/jobcards/:id/issue-part", h.issuePart)
}

type partRequest struct {
	Name          string          `json:"name" binding:"required"`
	StockQuantity int             `json:"stock_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

func (h *Handler) listParts(c *gin.Context) {
	parts, err := h.ledger.ListParts(c.Request.Context())
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handler) createPart(c *gin.Context) {
	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.ledger.CreatePart(c.Request.Context(), &Part{
		Name:          req.Name,
		StockQuantity: req.StockQuantity,
		UnitPrice:     req.UnitPrice,
	})
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"part": p})
}

func (h *Handler) getPart(c *gin.Context) {
	p, err := h.ledger.GetPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"part": p})
}

func (h *Handler) updatePart(c *gin.Context) {
	var req partRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := h.ledger.UpdatePart(c.Request.Context(), &Part{
		ID:            c.Param("id"),
		Name:          req.Name,
		StockQuantity: req.StockQuantity,
		UnitPrice:     req.UnitPrice,
	})
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"part": p})
}

func (h *Handler) deletePart(c *gin.Context) {
	if err := h.ledger.DeletePart(c.Request.Context(), c.Param("id")); err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type issuePartRequest struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

func (h *Handler) issuePart(c *gin.Context) {
	var req issuePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "part_id and quantity are required"})
		return
	}
	u, err := h.ledger.Issue(c.Request.Context(), c.Param("id"), req.PartID, req.Quantity)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"usage": u})
}
