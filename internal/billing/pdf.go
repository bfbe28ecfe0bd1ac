package billing

import (
	"bytes"
	"fmt"

	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/jung-kurt/gofpdf"
)

// RenderInvoicePDF 生成发票 PDF。
// 行项目：每条配件消耗一行（冻结单价），末行固定为工时费。
func RenderInvoicePDF(inv *Invoice, j *job.JobCard, usages []inventory.PartUsage) ([]byte, error) {
	if inv == nil || j == nil {
		return nil, fmt.Errorf("invoice and job card are required")
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	// 抬头
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "AutoServe360")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Two-Wheeler Service Pro")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "INVOICE")
	pdf.Ln(12)

	// 发票信息 / 客户与车辆
	pdf.SetFont("Helvetica", "", 10)
	left := []string{
		fmt.Sprintf("Invoice #: %s", inv.ID),
		fmt.Sprintf("Date: %s", inv.CreatedAt.Format("02/01/2006")),
	}
	var right []string
	if j.Customer != nil {
		right = append(right,
			fmt.Sprintf("Customer: %s", j.Customer.Name),
			fmt.Sprintf("Phone: %s", j.Customer.Phone),
		)
	}
	if j.Vehicle != nil {
		right = append(right,
			fmt.Sprintf("Vehicle: %s %s", j.Vehicle.Make, j.Vehicle.Model),
			fmt.Sprintf("Reg. No: %s", j.Vehicle.RegistrationNo),
		)
	}
	rows := len(left)
	if len(right) > rows {
		rows = len(right)
	}
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		pdf.Cell(90, 6, l)
		pdf.Cell(0, 6, r)
		pdf.Ln(6)
	}
	pdf.Ln(6)

	// 行项目表
	colW := []float64{10, 100, 15, 30, 30}
	header := []string{"#", "Item Description", "Qty", "Unit Price", "Total"}
	pdf.SetFillColor(250, 204, 21)
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range header {
		pdf.CellFormat(colW[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	row := func(n int, desc, qty, unit, total string) {
		pdf.CellFormat(colW[0], 7, fmt.Sprintf("%d", n), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 7, qty, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[3], 7, unit, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 7, total, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	for i, u := range usages {
		name := u.PartID
		if u.Part != nil {
			name = u.Part.Name
		}
		row(i+1, name,
			fmt.Sprintf("%d", u.QuantityUsed),
			"Rs "+u.PriceAtTimeOfUse.StringFixed(2),
			"Rs "+u.LineTotal().StringFixed(2),
		)
	}
	row(len(usages)+1, "Standard Labor Charge", "1",
		"Rs "+inv.LaborCharge.StringFixed(2),
		"Rs "+inv.LaborCharge.StringFixed(2),
	)
	pdf.Ln(6)

	// 合计
	totals := [][2]string{
		{"Subtotal:", "Rs " + inv.PartsTotal.Add(inv.LaborCharge).StringFixed(2)},
		{"GST (12%):", "Rs " + inv.TaxAmount.StringFixed(2)},
		{"Discount:", "- Rs " + inv.Discount.StringFixed(2)},
		{"Grand Total:", "Rs " + inv.TotalAmount.StringFixed(2)},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(150, 7, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, t[1], "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
