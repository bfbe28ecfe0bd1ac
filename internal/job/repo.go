package job

import (
	"context"
	"fmt"

	"gorm.io/gorm"
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

func (r *Repo) Create(ctx context.Context, j *JobCard) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(j).Error
}

func (r *Repo) Update(ctx context.Context, j *JobCard) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(j).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*JobCard, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var j JobCard
	if err := db.Where("id = ?", id).First(&j).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// GetDetail 详情页查询：预加载客户/车辆/检查项。
// 配件消耗与发票由各自领域的 repo 提供，handler 层聚合。
func (r *Repo) GetDetail(ctx context.Context, id string) (*JobCard, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var j JobCard
	err := db.
		Preload("Customer").
		Preload("Vehicle").
		Preload("Tasks").
		Where("id = ?", id).
		First(&j).Error
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// List 支持按 mechanic / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, mechanicID string, status Status, offset, limit int) ([]JobCard, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&JobCard{})
	if mechanicID != "" {
		q = q.Where("assigned_mechanic_id = ?", mechanicID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []JobCard
	err := q.Preload("Customer").Preload("Vehicle").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *Repo) GetTask(ctx context.Context, id string) (*ServiceTask, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var t ServiceTask
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) UpdateTask(ctx context.Context, t *ServiceTask) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(t).Error
}
