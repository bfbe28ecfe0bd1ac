package billing

import (
	"context"
	"testing"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/config"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/DATA-DOG/go-sqlmock"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gdb, mock, cleanup
}

func testService(gdb *gorm.DB) *Service {
	clk := clock.Fixed{T: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)}
	return NewService(gdb, clk, nil, config.BillingConfig{DefaultLaborCharge: "533.00"})
}

func invoiceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "job_card_id", "parts_total", "labor_charge", "discount", "tax_amount", "total_amount",
	})
}

func TestCreateInvoiceRejectedWhenInvoiceExists(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("j-1", "qc"))
	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE job_card_id = \\?.*FOR UPDATE").
		WillReturnRows(invoiceRows().AddRow("inv-1", "j-1", "250.00", "500.00", "0.00", "90.00", "840.00"))
	mock.ExpectRollback()

	_, err := testService(gdb).CreateInvoice(context.Background(), "j-1", CreateInvoiceInput{})
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateInvoiceUnknownJobCard(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectRollback()

	_, err := testService(gdb).CreateInvoice(context.Background(), "missing", CreateInvoiceInput{})
	if errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE job_card_id = \\?").
		WillReturnRows(invoiceRows())

	_, err := testService(gdb).GetInvoice(context.Background(), "j-1")
	if errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestBillingViewWithoutInvoiceReturnsNil(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `part_usages` WHERE job_card_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_card_id", "part_id", "quantity_used", "price_at_time_of_use"}))
	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE job_card_id = \\?").
		WillReturnRows(invoiceRows())

	usages, invoice, err := testService(gdb).BillingView(context.Background(), "j-1")
	if err != nil {
		t.Fatalf("BillingView: %v", err)
	}
	if usages == nil {
		t.Fatal("usages should be an empty slice, not nil")
	}
	// 未开票时必须是无类型 nil，序列化为 JSON null
	if invoice != nil {
		t.Fatalf("invoice should be nil, got %#v", invoice)
	}
}
