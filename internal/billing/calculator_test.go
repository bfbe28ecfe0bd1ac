package billing

import (
	"testing"

	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usage(price string, qty int) inventory.PartUsage {
	return inventory.PartUsage{PriceAtTimeOfUse: d(price), QuantityUsed: qty}
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	// 配件 2×100.00 + 1×50.00 = 250.00，工时 500.00，无折扣
	// subtotal 750.00，税 90.00，总计 840.00
	got := ComputeTotals([]inventory.PartUsage{
		usage("100.00", 2),
		usage("50.00", 1),
	}, d("500.00"), decimal.Zero)

	checks := []struct {
		name string
		have decimal.Decimal
		want string
	}{
		{"parts_total", got.PartsTotal, "250.00"},
		{"subtotal", got.Subtotal, "750.00"},
		{"tax", got.TaxAmount, "90.00"},
		{"total", got.TotalAmount, "840.00"},
	}
	for _, c := range checks {
		if !c.have.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.have, c.want)
		}
	}
}

func TestComputeTotalsUsesFrozenPrices(t *testing.T) {
	// 两条消耗即便来自同一配件，也各按自己冻结时的单价计
	usages := []inventory.PartUsage{
		usage("100.00", 1),
		usage("120.00", 1),
	}
	got := ComputeTotals(usages, decimal.Zero, decimal.Zero)
	if !got.PartsTotal.Equal(d("220.00")) {
		t.Fatalf("parts_total = %s, want 220.00", got.PartsTotal)
	}
}

func TestComputeTotalsRoundsTaxToTwoPlaces(t *testing.T) {
	// 333.33 × 0.12 = 39.9996 → 40.00
	got := ComputeTotals(nil, d("333.33"), decimal.Zero)
	if !got.TaxAmount.Equal(d("40.00")) {
		t.Fatalf("tax = %s, want 40.00", got.TaxAmount)
	}
	if !got.TotalAmount.Equal(d("373.33")) {
		t.Fatalf("total = %s, want 373.33", got.TotalAmount)
	}
}

func TestComputeTotalsDiscountDoesNotChangeTaxBase(t *testing.T) {
	// 折扣只减总额，税基（配件+工时）不变
	base := ComputeTotals([]inventory.PartUsage{usage("125.00", 2)}, d("500.00"), decimal.Zero)
	discounted := ComputeTotals([]inventory.PartUsage{usage("125.00", 2)}, d("500.00"), d("100.00"))

	if !discounted.TaxAmount.Equal(base.TaxAmount) {
		t.Fatalf("tax changed with discount: %s vs %s", discounted.TaxAmount, base.TaxAmount)
	}
	if !discounted.TaxAmount.Equal(d("90.00")) {
		t.Fatalf("tax = %s, want 90.00", discounted.TaxAmount)
	}
	if !discounted.TotalAmount.Equal(d("740.00")) {
		t.Fatalf("total = %s, want 740.00", discounted.TotalAmount)
	}
}

func TestComputeTotalsNegativeInputsPassThrough(t *testing.T) {
	// 负工时费/超额折扣不被拦截，照算
	got := ComputeTotals([]inventory.PartUsage{usage("50.00", 2)}, d("-100.00"), d("300.00"))
	if !got.Subtotal.Equal(d("0.00")) {
		t.Fatalf("subtotal = %s, want 0.00", got.Subtotal)
	}
	if !got.TaxAmount.Equal(d("0.00")) {
		t.Fatalf("tax = %s, want 0.00", got.TaxAmount)
	}
	if !got.TotalAmount.Equal(d("-300.00")) {
		t.Fatalf("total = %s, want -300.00", got.TotalAmount)
	}
}

func TestComputeTotalsEmptyUsages(t *testing.T) {
	got := ComputeTotals(nil, d("533.00"), decimal.Zero)
	if !got.PartsTotal.Equal(decimal.Zero) {
		t.Fatalf("parts_total = %s, want 0", got.PartsTotal)
	}
	if !got.TotalAmount.Equal(d("596.96")) {
		// 533.00 + 63.96
		t.Fatalf("total = %s, want 596.96", got.TotalAmount)
	}
}
