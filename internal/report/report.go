package report

import (
	"context"
	"fmt"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/billing"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Summary 一个时间窗口的经营汇总。
// 营收只统计已开票的工单；未开票工单计入工单数但不贡献营收。
type Summary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	JobCardsCreated int64           `json:"jobcards_created"`
	InvoiceCount    int64           `json:"invoice_count"`
	Revenue         decimal.Decimal `json:"revenue"`

	StatusCounts map[job.Status]int64 `json:"status_counts"`
	TopParts     []TopPart            `json:"top_parts"`
}

// TopPart 按发出数量排序的配件消耗汇总。
type TopPart struct {
	PartID       string          `json:"part_id"`
	Name         string          `json:"name"`
	QuantityUsed int64           `json:"quantity_used"`
	Amount       decimal.Decimal `json:"amount"`
}

type Service struct {
	gdb      *gorm.DB
	invoices *billing.Repo
}

func NewService(gdb *gorm.DB) *Service {
	return &Service{gdb: gdb, invoices: billing.NewRepo(gdb)}
}

// Summarize 汇总 [from, to) 窗口。三类查询各自独立，只读不加锁。
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("report service not initialized")
	}
	if !to.After(from) {
		return nil, errs.InvalidArgument("to must be after from")
	}
	db := s.gdb.WithContext(ctx)

	sum := &Summary{
		From:         from,
		To:           to,
		Revenue:      decimal.Zero,
		StatusCounts: make(map[job.Status]int64),
	}

	// 工单量与状态分布
	var statusRows []struct {
		Status job.Status
		N      int64
	}
	err := db.Model(&job.JobCard{}).
		Select("status, COUNT(*) AS n").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	for _, r := range statusRows {
		sum.StatusCounts[r.Status] = r.N
		sum.JobCardsCreated += r.N
	}

	// 开票数与营收
	count, revenue, err := s.invoices.SumInWindow(ctx, from, to)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	sum.InvoiceCount = count
	sum.Revenue = revenue

	// 配件消耗 TopN（按冻结单价计金额）
	var partRows []struct {
		PartID string
		Name   string
		Qty    int64
		Amount decimal.NullDecimal
	}
	err = db.Model(&inventory.PartUsage{}).
		Select("part_usages.part_id, parts.name, SUM(part_usages.quantity_used) AS qty, SUM(part_usages.quantity_used * part_usages.price_at_time_of_use) AS amount").
		Joins("JOIN parts ON parts.id = part_usages.part_id").
		Where("part_usages.created_at >= ? AND part_usages.created_at < ?", from, to).
		Group("part_usages.part_id, parts.name").
		Order("qty DESC").
		Limit(10).
		Scan(&partRows).Error
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	for _, r := range partRows {
		amount := decimal.Zero
		if r.Amount.Valid {
			amount = r.Amount.Decimal
		}
		sum.TopParts = append(sum.TopParts, TopPart{
			PartID:       r.PartID,
			Name:         r.Name,
			QuantityUsed: r.Qty,
			Amount:       amount,
		})
	}
	return sum, nil
}
