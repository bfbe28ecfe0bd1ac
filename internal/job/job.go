package job

import (
	"time"

	"github.com/AutoServe360/AutoServe360/internal/vehicle"
)

// JobCard 工单 GORM 模型：一辆车的一次进店维修。
type JobCard struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 业务关联
	CustomerID string            `gorm:"index;size:36;not null" json:"customer_id"`
	Customer   *vehicle.Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VehicleID  string            `gorm:"index;size:36;not null" json:"vehicle_id"`
	Vehicle    *vehicle.Vehicle  `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`

	// 可选指派技师；空串表示未指派
	AssignedMechanicID string `gorm:"index;size:36" json:"assigned_mechanic_id,omitempty"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	Tasks []ServiceTask `gorm:"foreignKey:JobCardID" json:"tasks,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ServiceTask 工单检查项：独立勾选，不驱动工单状态。
type ServiceTask struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	JobCardID   string    `gorm:"index;size:36;not null" json:"jobcard_id"`
	Description string    `gorm:"size:255;not null" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
