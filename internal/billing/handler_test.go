package billing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func newHandlerRig(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, func()) {
	t.Helper()

	gdb, mock, cleanup := newTestDB(t)
	svc := testService(gdb)
	clk := clock.Fixed{T: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, job.NewService(gdb, clk, nil), inventory.NewLedger(gdb, clk, nil))
	h.RegisterRoutes(r.Group("/api"))
	return r, mock, cleanup
}

// chunked 请求 ContentLength 为 -1，body 里的工时费仍必须生效。
func TestCreateInvoiceBindsChunkedBody(t *testing.T) {
	r, mock, cleanup := newHandlerRig(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("j-1", "qc"))
	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE job_card_id = \\?.*FOR UPDATE").
		WillReturnRows(invoiceRows())
	mock.ExpectQuery("SELECT \\* FROM `part_usages` WHERE job_card_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_card_id", "part_id", "quantity_used", "price_at_time_of_use"}))
	mock.ExpectExec("INSERT INTO `invoices`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `job_cards` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := struct{ io.Reader }{strings.NewReader(`{"labor_charge":"600.00"}`)}
	req := httptest.NewRequest(http.MethodPost, "/api/jobcards/j-1/create-invoice", body)
	if req.ContentLength != -1 {
		t.Fatalf("test setup: ContentLength = %d, want -1", req.ContentLength)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	// decimal 序列化会去掉末尾零
	if !strings.Contains(w.Body.String(), `"labor_charge":"600"`) {
		t.Fatalf("labor from body not applied: %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateInvoiceRejectsMalformedChunkedBody(t *testing.T) {
	r, mock, cleanup := newHandlerRig(t)
	defer cleanup()

	body := struct{ io.Reader }{strings.NewReader(`{"labor_charge":`)}
	req := httptest.NewRequest(http.MethodPost, "/api/jobcards/j-1/create-invoice", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestExportCSVListsWindowInvoices(t *testing.T) {
	r, mock, cleanup := newHandlerRig(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE created_at >= \\? AND created_at < \\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_card_id", "parts_total", "labor_charge", "discount", "tax_amount", "total_amount",
		}).AddRow("inv-1", "j-1", "250.00", "500.00", "10.00", "90.00", "830.00"))

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/export?from=2024-03-01&to=2024-03-31", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("content type = %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "invoice_id,jobcard_id") {
		t.Fatalf("missing csv header: %s", body)
	}
	if !strings.Contains(body, "inv-1,j-1,250.00,500.00,10.00,90.00,830.00") {
		t.Fatalf("missing invoice row: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestExportCSVRejectsBadDate(t *testing.T) {
	r, _, cleanup := newHandlerRig(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/export?from=03-01-2024", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateInvoiceEmptyBodyUsesDefaults(t *testing.T) {
	r, mock, cleanup := newHandlerRig(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `job_cards` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("j-1", "qc"))
	mock.ExpectQuery("SELECT \\* FROM `invoices` WHERE job_card_id = \\?.*FOR UPDATE").
		WillReturnRows(invoiceRows())
	mock.ExpectQuery("SELECT \\* FROM `part_usages` WHERE job_card_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_card_id", "part_id", "quantity_used", "price_at_time_of_use"}))
	mock.ExpectExec("INSERT INTO `invoices`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `job_cards` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/api/jobcards/j-1/create-invoice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	// 默认工时费 533.00（decimal 序列化去掉末尾零）
	if !strings.Contains(w.Body.String(), `"labor_charge":"533"`) {
		t.Fatalf("default labor not applied: %s", w.Body.String())
	}
}
