package billing

import (
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/shopspring/decimal"
)

// 统一税率 12%（GST），金额一律保留两位小数。
var taxRate = decimal.RequireFromString("0.12")

// Totals 一次结算的全部金额。
type Totals struct {
	PartsTotal  decimal.Decimal
	LaborCharge decimal.Decimal
	Discount    decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals 纯函数结算：
//
//	parts_total = Σ price_at_time_of_use × quantity_used
//	subtotal    = parts_total + labor
//	tax         = round2(subtotal × 0.12)
//	total       = subtotal + tax − discount
//
// 折扣在税后从总额里扣，不进税基。配件单行用的是消耗时冻结的
// 单价，与 Part 的现价无关。labor 与 discount 不做取值校验，
// 录入什么算什么。
func ComputeTotals(usages []inventory.PartUsage, labor, discount decimal.Decimal) Totals {
	partsTotal := decimal.Zero
	for _, u := range usages {
		partsTotal = partsTotal.Add(u.LineTotal())
	}
	partsTotal = partsTotal.Round(2)

	subtotal := partsTotal.Add(labor).Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax).Sub(discount).Round(2)

	return Totals{
		PartsTotal:  partsTotal,
		LaborCharge: labor.Round(2),
		Discount:    discount.Round(2),
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: total,
	}
}
