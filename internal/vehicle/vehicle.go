package vehicle

import (
	"strings"
	"time"
)

// Type 车辆类别。
type Type string

const (
	TypeMoped Type = "moped" // 踏板/助力车
	TypeBike  Type = "bike"  // 摩托车
)

// ValidType 校验车辆类别枚举。
func ValidType(t Type) bool {
	return t == TypeMoped || t == TypeBike
}

// Customer 是 customers 表的 GORM 模型。没有自然键，按 ID 引用。
type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Email     string    `gorm:"size:128" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Vehicle 是 vehicles 表的 GORM 模型。
// RegistrationNo 入库前统一大写，唯一索引保证同一牌照只有一行（大小写不敏感）。
type Vehicle struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID     string    `gorm:"index;size:36;not null" json:"customer_id"`
	Customer       *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Make           string    `gorm:"size:100" json:"make"`
	Model          string    `gorm:"size:100" json:"model"`
	RegistrationNo string    `gorm:"uniqueIndex;size:20;not null" json:"registration_no"`
	Type           Type      `gorm:"type:varchar(20);not null" json:"vehicle_type"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizeRegistration 牌照号规范化：去空白、去内部空格、统一大写。
// 查找与入库都走这一个函数，保证大小写不敏感的唯一性。
func NormalizeRegistration(reg string) string {
	reg = strings.TrimSpace(reg)
	reg = strings.ReplaceAll(reg, " ", "")
	return strings.ToUpper(reg)
}
