package vehicle

import (
	"context"
	"errors"
	"strings"

	commondb "github.com/AutoServe360/AutoServe360/internal/common/db"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerRef 客户引用：ID 非空表示复用已有客户，否则用内联字段新建。
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// VehicleRef 车辆引用：ID 非空表示复用已有车辆，否则按牌照 find-or-create。
type VehicleRef struct {
	ID             string `json:"id"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	RegistrationNo string `json:"registration_no"`
	Type           Type   `json:"vehicle_type"`
}

// Resolve 解析/去重客户与车辆，在调用方事务内执行：
//   - 显式 ID 引用必须存在，否则 NotFound
//   - 无车辆 ID 时按规范化牌照查找；命中则复用（不改车主归属），
//     未命中则新建并挂到本次解析出的客户
//   - 并发录入撞上牌照唯一索引时，按已存在处理重新查找
//
// 任何失败向上返回，由外层事务整体回滚。
func Resolve(ctx context.Context, tx *gorm.DB, cref CustomerRef, vref VehicleRef) (*Customer, *Vehicle, error) {
	repo := NewRepo(tx)

	cust, err := resolveCustomer(ctx, repo, cref)
	if err != nil {
		return nil, nil, err
	}

	veh, err := resolveVehicle(ctx, repo, cust, vref)
	if err != nil {
		return nil, nil, err
	}
	return cust, veh, nil
}

func resolveCustomer(ctx context.Context, repo *Repo, ref CustomerRef) (*Customer, error) {
	if id := strings.TrimSpace(ref.ID); id != "" {
		c, err := repo.FindCustomerByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("customer %s not found", id)
		}
		if err != nil {
			return nil, errs.Internal(err, "storage error")
		}
		return c, nil
	}

	name := strings.TrimSpace(ref.Name)
	phone := strings.TrimSpace(ref.Phone)
	if name == "" || phone == "" {
		return nil, errs.InvalidArgument("customer name and phone required")
	}
	c := &Customer{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
		Email: strings.TrimSpace(ref.Email),
	}
	if err := repo.CreateCustomer(ctx, c); err != nil {
		return nil, errs.Internal(err, "failed to create customer")
	}
	return c, nil
}

func resolveVehicle(ctx context.Context, repo *Repo, owner *Customer, ref VehicleRef) (*Vehicle, error) {
	if id := strings.TrimSpace(ref.ID); id != "" {
		v, err := repo.FindVehicleByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("vehicle %s not found", id)
		}
		if err != nil {
			return nil, errs.Internal(err, "storage error")
		}
		return v, nil
	}

	reg := NormalizeRegistration(ref.RegistrationNo)
	if reg == "" {
		return nil, errs.InvalidArgument("registration_no required")
	}

	// 先查后建；已登记的车辆直接复用，归属不变。
	v, err := repo.FindByRegistration(ctx, reg)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Internal(err, "storage error")
	}

	if !ValidType(ref.Type) {
		return nil, errs.InvalidArgument("invalid vehicle_type %q", ref.Type)
	}
	nv := &Vehicle{
		ID:             uuid.NewString(),
		CustomerID:     owner.ID,
		Make:           strings.TrimSpace(ref.Make),
		Model:          strings.TrimSpace(ref.Model),
		RegistrationNo: reg,
		Type:           ref.Type,
	}
	err = repo.CreateVehicle(ctx, nv)
	if err == nil {
		return nv, nil
	}
	// 并发录入同一牌照：唯一索引冲突视为已存在，重查复用。
	if commondb.IsDuplicateKey(err) {
		v, err2 := repo.FindByRegistration(ctx, reg)
		if err2 != nil {
			return nil, errs.Internal(err2, "storage error")
		}
		return v, nil
	}
	return nil, errs.Internal(err, "failed to create vehicle")
}
