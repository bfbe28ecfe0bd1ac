package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/AutoServe360/AutoServe360/internal/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger 库存台账：发料（检查-扣减-记账）是唯一的库存扣减路径，
// 整个动作在一个事务里完成，依赖配件行锁挡并发超卖。
type Ledger struct {
	db     *gorm.DB
	repo   *Repo
	clk    clock.Clock
	events *realtime.Hub
}

func NewLedger(db *gorm.DB, clk clock.Clock, events *realtime.Hub) *Ledger {
	return &Ledger{
		db:     db,
		repo:   NewRepo(db),
		clk:    clk,
		events: events,
	}
}

// Issue 向工单发料：
//   - 工单/配件不存在 → NotFound
//   - 库存不足 → Insufficient（附配件名与当前可用量），库存不动
//   - 成功 → 扣减库存并写入带冻结单价的消耗记录
//
// 锁定配件行后做检查与扣减，两笔并发发料合计超过库存时只有一笔成功。
// 不校验工单是否仍处于可发料状态（与现场操作习惯一致，录入补单常在
// 质检后发生）。
func (l *Ledger) Issue(ctx context.Context, jobCardID, partID string, quantity int) (*PartUsage, error) {
	if l == nil || l.db == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	jobCardID = strings.TrimSpace(jobCardID)
	partID = strings.TrimSpace(partID)
	if jobCardID == "" || partID == "" {
		return nil, errs.InvalidArgument("jobcard id and part id required")
	}
	if quantity < 1 {
		return nil, errs.InvalidArgument("quantity must be at least 1")
	}

	var usage *PartUsage
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := job.NewRepo(tx).GetByID(ctx, jobCardID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("job card not found")
			}
			return errs.Internal(err, "storage error")
		}

		repo := NewRepo(tx)
		p, err := repo.FindPartForUpdate(ctx, partID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("part not found")
		}
		if err != nil {
			return errs.Internal(err, "storage error")
		}

		if p.StockQuantity < quantity {
			return errs.Insufficient("Not enough stock for '%s'. Only %d available.", p.Name, p.StockQuantity)
		}

		affected, err := repo.DecrementStock(ctx, p.ID, quantity)
		if err != nil {
			return errs.Internal(err, "failed to decrement stock")
		}
		if affected == 0 {
			// 条件扣减兜底：锁内不应出现，出现即视为并发不足
			return errs.Insufficient("Not enough stock for '%s'. Only %d available.", p.Name, p.StockQuantity)
		}

		usage = &PartUsage{
			ID:               uuid.NewString(),
			JobCardID:        jobCardID,
			PartID:           p.ID,
			QuantityUsed:     quantity,
			PriceAtTimeOfUse: p.UnitPrice,
			CreatedAt:        l.clk.Now(),
		}
		if err := repo.CreateUsage(ctx, usage); err != nil {
			return errs.Internal(err, "failed to record part usage")
		}
		usage.Part = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.events.Publish("part_issued", jobCardID, usage)
	return usage, nil
}

// CreatePart 新建配件；库存与单价不允许为负。
func (l *Ledger) CreatePart(ctx context.Context, p *Part) (*Part, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, errs.InvalidArgument("part name required")
	}
	if p.StockQuantity < 0 {
		return nil, errs.InvalidArgument("stock_quantity must not be negative")
	}
	if p.UnitPrice.IsNegative() {
		return nil, errs.InvalidArgument("unit_price must not be negative")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := l.repo.CreatePart(ctx, p); err != nil {
		return nil, errs.Internal(err, "failed to create part")
	}
	return p, nil
}

// UpdatePart 管理端盘点/调价。改 UnitPrice 不回写历史消耗记录。
func (l *Ledger) UpdatePart(ctx context.Context, p *Part) (*Part, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	existing, err := l.GetPart(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = existing.Name
	}
	if p.StockQuantity < 0 {
		return nil, errs.InvalidArgument("stock_quantity must not be negative")
	}
	if p.UnitPrice.IsNegative() {
		return nil, errs.InvalidArgument("unit_price must not be negative")
	}
	p.CreatedAt = existing.CreatedAt
	if err := l.repo.UpdatePart(ctx, p); err != nil {
		return nil, errs.Internal(err, "failed to update part")
	}
	return p, nil
}

// DeletePart 删除配件；已被消耗记录引用的配件拒绝删除（保护引用，不做级联）。
func (l *Ledger) DeletePart(ctx context.Context, id string) error {
	if l == nil || l.repo == nil {
		return fmt.Errorf("ledger not initialized")
	}
	p, err := l.GetPart(ctx, id)
	if err != nil {
		return err
	}
	n, err := l.repo.CountUsagesByPart(ctx, p.ID)
	if err != nil {
		return errs.Internal(err, "storage error")
	}
	if n > 0 {
		return errs.Conflict("part '%s' is referenced by %d usage records and cannot be deleted", p.Name, n)
	}
	if err := l.repo.DeletePart(ctx, p.ID); err != nil {
		return errs.Internal(err, "failed to delete part")
	}
	return nil
}

func (l *Ledger) GetPart(ctx context.Context, id string) (*Part, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.InvalidArgument("part id required")
	}
	p, err := l.repo.FindPartByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("part not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return p, nil
}

func (l *Ledger) ListParts(ctx context.Context) ([]Part, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	parts, err := l.repo.ListParts(ctx)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return parts, nil
}

// Usages 工单的消耗记录列表。
func (l *Ledger) Usages(ctx context.Context, jobCardID string) ([]PartUsage, error) {
	if l == nil || l.repo == nil {
		return nil, fmt.Errorf("ledger not initialized")
	}
	usages, err := l.repo.ListUsagesByJobCard(ctx, jobCardID)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return usages, nil
}
