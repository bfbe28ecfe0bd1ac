package user

import (
	"time"
)

// Role 用户角色。
type Role string

const (
	RoleAdmin    Role = "admin"    // 门店管理员
	RoleMechanic Role = "mechanic" // 技师
)

// ValidRole 校验角色枚举。
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleMechanic
}

// User 是 users 表的 GORM 模型。
// PIN 按原样存储、等值比对（门店内网场景，不做强认证）。
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;size:128" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Role      Role      `gorm:"type:varchar(20);index;not null" json:"role"`
	PIN       string    `gorm:"column:pin;size:12;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Mechanic 技师列表项（含未完成工单数）。
type Mechanic struct {
	User
	PendingJobs int64 `json:"pending_jobs"`
}
