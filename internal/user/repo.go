package user

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

func (r *Repo) Create(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repo) Update(ctx context.Context, u *User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListMechanics 返回全部技师及各自未完成工单数（status != done）。
func (r *Repo) ListMechanics(ctx context.Context) ([]Mechanic, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var out []Mechanic
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Select("users.*, COUNT(job_cards.id) AS pending_jobs").
		Joins("LEFT JOIN job_cards ON job_cards.assigned_mechanic_id = users.id AND job_cards.status <> ?", "done").
		Where("users.role = ?", RoleMechanic).
		Group("users.id").
		Order("users.full_name").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
