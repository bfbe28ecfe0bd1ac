package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/config"
	"github.com/AutoServe360/AutoServe360/internal/common/db"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/AutoServe360/AutoServe360/internal/realtime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service 结算服务：开票是终局动作，成功后工单固定为 done，
// 发票金额不再随配件调价或后续发料变化。
type Service struct {
	gdb        *gorm.DB
	repo       *Repo
	clk        clock.Clock
	events     *realtime.Hub
	defLabor   decimal.Decimal
	defLaborOK bool
}

func NewService(gdb *gorm.DB, clk clock.Clock, events *realtime.Hub, cfg config.BillingConfig) *Service {
	s := &Service{
		gdb:    gdb,
		repo:   NewRepo(gdb),
		clk:    clk,
		events: events,
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(cfg.DefaultLaborCharge)); err == nil {
		s.defLabor = d
		s.defLaborOK = true
	}
	return s
}

// CreateInvoiceInput 工时费与折扣都可缺省：工时费走配置默认值，折扣为 0。
// 两者都不做取值范围校验。
type CreateInvoiceInput struct {
	LaborCharge *decimal.Decimal `json:"labor_charge"`
	Discount    *decimal.Decimal `json:"discount"`
}

// CreateInvoice 为工单开票：
//   - 工单不存在 → NotFound
//   - 已有发票 → Conflict（并发重复开票由唯一索引兜底，同样报 Conflict）
//   - 成功 → 按冻结单价结算、落发票、工单状态置为 done
//
// 整个动作在一个事务里完成。
func (s *Service) CreateInvoice(ctx context.Context, jobCardID string, in CreateInvoiceInput) (*Invoice, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("billing service not initialized")
	}
	jobCardID = strings.TrimSpace(jobCardID)
	if jobCardID == "" {
		return nil, errs.InvalidArgument("jobcard id required")
	}

	labor := decimal.Zero
	if s.defLaborOK {
		labor = s.defLabor
	}
	if in.LaborCharge != nil {
		labor = *in.LaborCharge
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}

	var inv *Invoice
	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobRepo := job.NewRepo(tx)
		j, err := jobRepo.GetByID(ctx, jobCardID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("job card not found")
		}
		if err != nil {
			return errs.Internal(err, "storage error")
		}

		existing, err := NewRepo(tx).FindByJobCardForUpdate(ctx, jobCardID)
		if err != nil {
			return errs.Internal(err, "storage error")
		}
		if existing != nil {
			return errs.Conflict("invoice already exists for this job card")
		}

		usages, err := inventory.NewRepo(tx).ListUsagesByJobCard(ctx, jobCardID)
		if err != nil {
			return errs.Internal(err, "storage error")
		}

		t := ComputeTotals(usages, labor, discount)
		inv = &Invoice{
			ID:          uuid.NewString(),
			JobCardID:   jobCardID,
			PartsTotal:  t.PartsTotal,
			LaborCharge: t.LaborCharge,
			Discount:    t.Discount,
			TaxAmount:   t.TaxAmount,
			TotalAmount: t.TotalAmount,
			CreatedAt:   s.clk.Now(),
		}
		if err := NewRepo(tx).Create(ctx, inv); err != nil {
			if db.IsDuplicateKey(err) {
				return errs.Conflict("invoice already exists for this job card")
			}
			return errs.Internal(err, "failed to create invoice")
		}

		// 开票即完工
		j.Status = job.StatusDone
		if err := jobRepo.Update(ctx, j); err != nil {
			return errs.Internal(err, "failed to close job card")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish("invoiced", jobCardID, inv)
	return inv, nil
}

// GetInvoice 按工单取发票；没有时返回 NotFound。
func (s *Service) GetInvoice(ctx context.Context, jobCardID string) (*Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("billing service not initialized")
	}
	inv, err := s.repo.FindByJobCard(ctx, jobCardID)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	if inv == nil {
		return nil, errs.NotFound("no invoice for this job card")
	}
	return inv, nil
}

// ListInvoices 窗口内的发票列表（导出用）。
func (s *Service) ListInvoices(ctx context.Context, from, to time.Time) ([]Invoice, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("billing service not initialized")
	}
	if !to.After(from) {
		return nil, errs.InvalidArgument("to must be after from")
	}
	invs, err := s.repo.ListInWindow(ctx, from, to)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return invs, nil
}

// BillingView 工单详情的计费侧视图：配件消耗 + 发票（可能为 nil）。
func (s *Service) BillingView(ctx context.Context, jobCardID string) (interface{}, interface{}, error) {
	if s == nil || s.gdb == nil {
		return nil, nil, fmt.Errorf("billing service not initialized")
	}
	usages, err := inventory.NewRepo(s.gdb).ListUsagesByJobCard(ctx, jobCardID)
	if err != nil {
		return nil, nil, errs.Internal(err, "storage error")
	}
	if usages == nil {
		usages = []inventory.PartUsage{}
	}
	inv, err := s.repo.FindByJobCard(ctx, jobCardID)
	if err != nil {
		return nil, nil, errs.Internal(err, "storage error")
	}
	if inv == nil {
		// 显式返回无类型 nil，JSON 序列化为 null
		return usages, nil, nil
	}
	return usages, inv, nil
}
