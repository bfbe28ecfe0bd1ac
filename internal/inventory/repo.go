package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repo) CreatePart(ctx context.Context, p *Part) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(p).Error
}

func (r *Repo) UpdatePart(ctx context.Context, p *Part) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(p).Error
}

func (r *Repo) DeletePart(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Where("id = ?", id).Delete(&Part{}).Error
}

func (r *Repo) FindPartByID(ctx context.Context, id string) (*Part, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Part
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPartForUpdate 行锁读取（SELECT ... FOR UPDATE）。
// 只允许在事务内调用：锁住配件行直到提交，挡住并发发料读到旧库存。
func (r *Repo) FindPartForUpdate(ctx context.Context, id string) (*Part, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var p Part
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListParts(ctx context.Context) ([]Part, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var parts []Part
	if err := db.Order("name").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// DecrementStock 条件扣减库存。WHERE 带库存下限，配合行锁双保险：
// 即使锁路径出问题，影响行数为 0 也会被上层当作不足处理。
func (r *Repo) DecrementStock(ctx context.Context, partID string, qty int) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	res := db.Model(&Part{}).
		Where("id = ? AND stock_quantity >= ?", partID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *Repo) CreateUsage(ctx context.Context, u *PartUsage) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(u).Error
}

// ListUsagesByJobCard 工单的全部消耗记录（含配件名，结算/详情用）。
func (r *Repo) ListUsagesByJobCard(ctx context.Context, jobCardID string) ([]PartUsage, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var usages []PartUsage
	err := db.Preload("Part").
		Where("job_card_id = ?", jobCardID).
		Order("created_at").
		Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

// CountUsagesByPart 配件被引用的消耗条数（删除保护用）。
func (r *Repo) CountUsagesByPart(ctx context.Context, partID string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&PartUsage{}).Where("part_id = ?", partID).Count(&n).Error
	return n, err
}
