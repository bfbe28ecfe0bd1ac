package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
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

func jobCardRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "customer_id", "vehicle_id", "assigned_mechanic_id", "status"})
}

func partRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "stock_quantity", "unit_price"})
}

func testLedger(gdb *gorm.DB) *Ledger {
	return NewLedger(gdb, clock.Fixed{T: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}, nil)
}

func TestIssueFreezesPriceAndDecrementsStock(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(jobCardRows().AddRow("j-1", "c-1", "v-1", "m-1", "service"))
	mock.ExpectQuery("SELECT \\* FROM `parts` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(partRows().AddRow("p-1", "Brake Pad", 5, "125.00"))
	mock.ExpectExec("UPDATE `parts` SET `stock_quantity`=stock_quantity - \\? WHERE id = \\? AND stock_quantity >= \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `part_usages`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	u, err := testLedger(gdb).Issue(context.Background(), "j-1", "p-1", 2)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !u.PriceAtTimeOfUse.Equal(decimal.RequireFromString("125.00")) {
		t.Fatalf("expected frozen price 125.00, got %s", u.PriceAtTimeOfUse)
	}
	if u.QuantityUsed != 2 || u.JobCardID != "j-1" {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if !u.LineTotal().Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("line total: %s", u.LineTotal())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestIssueInsufficientStockRollsBack(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(jobCardRows().AddRow("j-1", "c-1", "v-1", "", "parts"))
	mock.ExpectQuery("SELECT \\* FROM `parts` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(partRows().AddRow("p-1", "Chain Kit", 3, "400.00"))
	// 不足：不应出现 UPDATE / INSERT，事务回滚
	mock.ExpectRollback()

	_, err := testLedger(gdb).Issue(context.Background(), "j-1", "p-1", 4)
	if errs.KindOf(err) != errs.KindInsufficient {
		t.Fatalf("expected Insufficient, got %v", err)
	}
	want := "Not enough stock for 'Chain Kit'. Only 3 available."
	if errs.Message(err) != want {
		t.Fatalf("message mismatch: %q", errs.Message(err))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestIssueUnknownJobCard(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(jobCardRows())
	mock.ExpectRollback()

	_, err := testLedger(gdb).Issue(context.Background(), "missing", "p-1", 1)
	if errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestIssueValidatesQuantity(t *testing.T) {
	gdb, _, cleanup := newTestDB(t)
	defer cleanup()

	_, err := testLedger(gdb).Issue(context.Background(), "j-1", "p-1", 0)
	if errs.KindOf(err) != errs.KindInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestDeletePartRefusedWhileReferenced(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `parts` WHERE id = \\?").
		WillReturnRows(partRows().AddRow("p-1", "Air Filter", 10, "80.00"))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `part_usages` WHERE part_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

	err := testLedger(gdb).DeletePart(context.Background(), "p-1")
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if !strings.Contains(errs.Message(err), "Air Filter") {
		t.Fatalf("message should name the part: %q", errs.Message(err))
	}
}

func TestCreatePartRejectsNegativeValues(t *testing.T) {
	gdb, _, cleanup := newTestDB(t)
	defer cleanup()

	l := testLedger(gdb)
	if _, err := l.CreatePart(context.Background(), &Part{Name: "Bulb", StockQuantity: -1}); errs.KindOf(err) != errs.KindInvalidArgument {
		t.Fatalf("negative stock should be rejected, got %v", err)
	}
	p := &Part{Name: "Bulb", UnitPrice: decimal.RequireFromString("-1.00")}
	if _, err := l.CreatePart(context.Background(), p); errs.KindOf(err) != errs.KindInvalidArgument {
		t.Fatalf("negative price should be rejected, got %v", err)
	}
}
