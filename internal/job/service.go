package job

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/AutoServe360/AutoServe360/internal/realtime"
	"github.com/AutoServe360/AutoServe360/internal/user"
	"github.com/AutoServe360/AutoServe360/internal/vehicle"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装工单领域的核心用例（不依赖 HTTP），便于复用和测试。
// 工单录入（客户/车辆解析 + 工单 + 检查项）在单个事务内完成：
// 要么全部落库，要么全部回滚。
type Service struct {
	db     *gorm.DB
	repo   *Repo
	clk    clock.Clock
	events *realtime.Hub
}

func NewService(db *gorm.DB, clk clock.Clock, events *realtime.Hub) *Service {
	return &Service{
		db:     db,
		repo:   NewRepo(db),
		clk:    clk,
		events: events,
	}
}

// CreateJobInput 工单录入入参。
type CreateJobInput struct {
	Customer         vehicle.CustomerRef `json:"customer"`
	Vehicle          vehicle.VehicleRef  `json:"vehicle"`
	MechanicID       string              `json:"mechanic_id"`
	TaskDescriptions []string            `json:"task_descriptions"`
}

// ListFilter 查询条件。
type ListFilter struct {
	MechanicID string
	Status     Status
	Offset     int
	Limit      int
}

// CreateJob 工单录入：解析/去重客户与车辆，创建工单与检查项。
// 整体一个事务；引用缺失、技师不存在、约束冲突都会使本次录入
// 完整回滚并返回单个校验错误。
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*JobCard, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	descs := make([]string, 0, len(in.TaskDescriptions))
	for _, d := range in.TaskDescriptions {
		d = strings.TrimSpace(d)
		if d != "" {
			descs = append(descs, d)
		}
	}
	if len(descs) == 0 {
		return nil, errs.InvalidArgument("at least one service task required")
	}
	mechanicID := strings.TrimSpace(in.MechanicID)

	var created *JobCard
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cust, veh, err := vehicle.Resolve(ctx, tx, in.Customer, in.Vehicle)
		if err != nil {
			return err
		}

		if mechanicID != "" {
			mech, err := user.NewRepo(tx).FindByID(ctx, mechanicID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("mechanic %s not found", mechanicID)
			}
			if err != nil {
				return errs.Internal(err, "storage error")
			}
			if mech.Role != user.RoleMechanic {
				return errs.InvalidArgument("user %s is not a mechanic", mechanicID)
			}
		}

		j := &JobCard{
			ID:                 uuid.NewString(),
			CustomerID:         cust.ID,
			VehicleID:          veh.ID,
			AssignedMechanicID: mechanicID,
			Status:             StatusQueue,
			CreatedAt:          s.clk.Now(),
		}
		for _, d := range descs {
			j.Tasks = append(j.Tasks, ServiceTask{
				ID:          uuid.NewString(),
				JobCardID:   j.ID,
				Description: d,
			})
		}

		if err := NewRepo(tx).Create(ctx, j); err != nil {
			return errs.Internal(err, "failed to create job card")
		}
		created = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish("job_created", created.ID, created)
	return created, nil
}

// SetStatus 更新工单状态。只校验枚举合法性，不限制流转方向
// （见 CanTransition 的策略说明）。
func (s *Service) SetStatus(ctx context.Context, jobCardID string, to Status) (*JobCard, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	jobCardID = strings.TrimSpace(jobCardID)
	if jobCardID == "" {
		return nil, errs.InvalidArgument("jobcard id required")
	}
	if !Valid(to) {
		return nil, errs.InvalidArgument("invalid status %q", to)
	}

	j, err := s.repo.GetByID(ctx, jobCardID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("job card not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}

	from := j.Status
	j.Status = to
	if err := s.repo.Update(ctx, j); err != nil {
		return nil, errs.Internal(err, "failed to update status")
	}

	s.events.Publish("status_changed", j.ID, map[string]Status{"from": from, "to": to})
	return j, nil
}

// Get 详情（客户/车辆/检查项已预加载）。
func (s *Service) Get(ctx context.Context, id string) (*JobCard, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.InvalidArgument("id required")
	}
	j, err := s.repo.GetDetail(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("job card not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return j, nil
}

// List 工单列表。
func (s *Service) List(ctx context.Context, f ListFilter) ([]JobCard, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	if f.Status != "" && !Valid(f.Status) {
		return nil, 0, errs.InvalidArgument("invalid status %q", f.Status)
	}
	jobs, total, err := s.repo.List(ctx, strings.TrimSpace(f.MechanicID), f.Status, f.Offset, f.Limit)
	if err != nil {
		return nil, 0, errs.Internal(err, "storage error")
	}
	return jobs, total, nil
}

// UpdateTask 更新检查项完成状态/备注；与工单状态互不影响。
func (s *Service) UpdateTask(ctx context.Context, taskID string, completed *bool, notes *string) (*ServiceTask, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, errs.InvalidArgument("task id required")
	}
	if completed == nil && notes == nil {
		return nil, errs.InvalidArgument("nothing to update")
	}

	t, err := s.repo.GetTask(ctx, taskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("task not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}

	if completed != nil {
		t.Completed = *completed
	}
	if notes != nil {
		t.Notes = *notes
	}
	if err := s.repo.UpdateTask(ctx, t); err != nil {
		return nil, errs.Internal(err, "failed to update task")
	}
	return t, nil
}
