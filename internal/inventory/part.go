package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part 是 parts 表的 GORM 模型。
// StockQuantity 只允许经由 Ledger.Issue 在事务内扣减，其他路径不得改库存
// （管理端盘点走 UpdatePart 的整量覆盖，带非负校验）。
type Part struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// PartUsage 一次配件消耗的不可变记录。
// PriceAtTimeOfUse 是发料当时单价的冻结副本，结算只用这个值，
// 之后改 Part.UnitPrice 不影响已发生的消耗与已开发票。
type PartUsage struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	JobCardID        string          `gorm:"index;size:36;not null" json:"jobcard_id"`
	PartID           string          `gorm:"index;size:36;not null" json:"part_id"`
	Part             *Part           `gorm:"foreignKey:PartID" json:"part,omitempty"`
	QuantityUsed     int             `gorm:"not null" json:"quantity_used"`
	PriceAtTimeOfUse decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_time_of_use"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// LineTotal 该条消耗的金额（冻结单价 × 数量）。
func (u PartUsage) LineTotal() decimal.Decimal {
	return u.PriceAtTimeOfUse.Mul(decimal.NewFromInt(int64(u.QuantityUsed)))
}
