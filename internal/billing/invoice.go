package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invoice 发票 GORM 模型。每张工单至多一张，由 job_card_id 唯一索引兜底。
// 金额字段在开票时一次算定，之后不再改动。
type Invoice struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	JobCardID string `gorm:"uniqueIndex;size:36;not null" json:"jobcard_id"`

	PartsTotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"parts_total"`
	LaborCharge decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"labor_charge"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, inv *Invoice) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(inv).Error
}

// FindByJobCard 按工单取发票；没有时返回 (nil, nil)。
func (r *Repo) FindByJobCard(ctx context.Context, jobCardID string) (*Invoice, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var inv Invoice
	err := db.Where("job_card_id = ?", jobCardID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindByJobCardForUpdate 行锁版本，开票事务内用来挡并发重复开票。
func (r *Repo) FindByJobCardForUpdate(ctx context.Context, jobCardID string) (*Invoice, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var inv Invoice
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("job_card_id = ?", jobCardID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInWindow 窗口内的发票列表（导出用），按开票时间排序。
func (r *Repo) ListInWindow(ctx context.Context, from, to time.Time) ([]Invoice, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var invs []Invoice
	err := db.Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// SumInWindow 统计窗口内的发票数量与合计金额（报表用）。
func (r *Repo) SumInWindow(ctx context.Context, from, to time.Time) (count int64, revenue decimal.Decimal, err error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, decimal.Zero, fmt.Errorf("repo db is nil")
	}
	var row struct {
		N     int64
		Total decimal.NullDecimal
	}
	err = db.Model(&Invoice{}).
		Select("COUNT(*) AS n, SUM(total_amount) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	revenue = decimal.Zero
	if row.Total.Valid {
		revenue = row.Total.Decimal
	}
	return row.N, revenue, nil
}
