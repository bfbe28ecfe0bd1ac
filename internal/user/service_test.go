package user

import (
	"context"
	"testing"

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

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "full_name", "role", "pin"})
}

func TestLoginIssuesTokenWhenAuthEnabled(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows().AddRow("u-1", "ramesh", "Ramesh K", "mechanic", "4321"))

	svc := NewService(NewRepo(gdb), config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "autoserve360",
		Audience:  "autoserve360",
	})
	res, err := svc.Login(context.Background(), "ramesh", "4321")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != "u-1" {
		t.Fatalf("user mismatch: %+v", res.User)
	}
	if res.AccessToken == "" {
		t.Fatal("expected access token with auth enabled")
	}
}

func TestLoginWrongPIN(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows().AddRow("u-1", "ramesh", "Ramesh K", "mechanic", "4321"))

	svc := NewService(NewRepo(gdb), config.AuthConfig{})
	_, err := svc.Login(context.Background(), "ramesh", "9999")
	if errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestLoginUnknownUserSameError(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows())

	svc := NewService(NewRepo(gdb), config.AuthConfig{})
	_, err := svc.Login(context.Background(), "ghost", "4321")
	// 不暴露用户是否存在
	if errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows().AddRow("u-1", "ramesh", "Ramesh K", "mechanic", "4321"))

	svc := NewService(NewRepo(gdb), config.AuthConfig{})
	_, err := svc.Register(context.Background(), &User{
		Username: "ramesh", FullName: "Another", Role: RoleMechanic, PIN: "1234",
	})
	if errs.KindOf(err) != errs.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestChangePINRequiresCurrentPIN(t *testing.T) {
	gdb, mock, cleanup := newTestDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(userRows().AddRow("u-1", "ramesh", "Ramesh K", "mechanic", "4321"))

	svc := NewService(NewRepo(gdb), config.AuthConfig{})
	err := svc.ChangePIN(context.Background(), "u-1", "0000", "5678")
	if errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}
