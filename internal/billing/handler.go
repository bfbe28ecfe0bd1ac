package billing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	commonserver "github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/gin-gonic/gin"
)

// Handler 结算 HTTP 接口。PDF 下载复用工单详情与消耗记录。
type Handler struct {
	svc    *Service
	jobs   *job.Service
	ledger *inventory.Ledger
}

func NewHandler(svc *Service, jobs *job.Service, ledger *inventory.Ledger) *Handler {
	return &Handler{svc: svc, jobs: jobs, ledger: ledger}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/jobcards/:id/create-invoice", h.createInvoice)
	api.GET("/jobcards/:id/invoice-pdf", h.invoicePDF)
	api.GET("/invoices/export", h.exportCSV)
}

func (h *Handler) createInvoice(c *gin.Context) {
	var in CreateInvoiceInput
	// 空请求体合法（工时费与折扣走默认值）；有请求体就必须绑定成功，
	// 不看 Content-Length（chunked 请求该值为 -1）
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	inv, err := h.svc.CreateInvoice(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}

// exportCSV 窗口内发票的 CSV 导出。from/to 取 YYYY-MM-DD，缺省最近 30 天。
func (h *Handler) exportCSV(c *gin.Context) {
	now := time.Now()
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

	invs, err := h.svc.ListInvoices(c.Request.Context(), from, to)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"invoice_id", "jobcard_id", "parts_total", "labor_charge", "discount", "tax_amount", "total_amount", "created_at"})
	for _, inv := range invs {
		_ = cw.Write([]string{
			inv.ID,
			inv.JobCardID,
			inv.PartsTotal.StringFixed(2),
			inv.LaborCharge.StringFixed(2),
			inv.Discount.StringFixed(2),
			inv.TaxAmount.StringFixed(2),
			inv.TotalAmount.StringFixed(2),
			inv.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=invoices.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) invoicePDF(c *gin.Context) {
	id := c.Param("id")
	inv, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	j, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	usages, err := h.ledger.Usages(c.Request.Context(), id)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}

	pdfBytes, err := RenderInvoicePDF(inv, j, usages)
	if err != nil {
		commonserver.AbortError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s.pdf", inv.ID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
