package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"staffhub.org/internal/audit"
	"staffhub.org/internal/auth"
	"staffhub.org/internal/staff"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestEmployeeCreateAssignsID(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec("insert into employees").
		WithArgs(sqlmock.AnyArg(), "Jane Smith", "jane@example.com", "Engineering", int64(90000), now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := &staff.Employee{
		Name:       "Jane Smith",
		Email:      "jane@example.com",
		Department: "Engineering",
		Salary:     90000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.Employees().Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeFindNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("select id, name, email, department, salary, created_at, updated_at from employees where id=").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Employees().Find(context.Background(), "missing")
	if !errors.Is(err, staff.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeDeleteReportsMissingRow(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("delete from employees where id=").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Employees().Delete(context.Background(), "e1")
	if !errors.Is(err, staff.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRoundTripFiltersUnknownRoles(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "username", "password_hash", "email", "full_name", "roles", "active", "created_at", "updated_at",
	}).AddRow("u1", "jsmith", "$2a$10$hash", "jane@example.com", "Jane Smith",
		[]byte(`["ADMIN","AUDITOR"]`), true, now, now)

	mock.ExpectQuery("select id, username, password_hash, email, full_name, roles, active, created_at, updated_at from users where username=\\$1 and active").
		WithArgs("jsmith").
		WillReturnRows(rows)

	u, err := store.Users().FindActiveByUsername(context.Background(), "jsmith")
	if err != nil {
		t.Fatalf("FindActiveByUsername: %v", err)
	}
	if len(u.Roles) != 1 || u.Roles[0] != auth.RoleAdmin {
		t.Fatalf("expected unknown role filtered, got %v", u.Roles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditAppendNullsEmptyEntityID(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec("insert into audit_log").
		WithArgs("a1", "DELETE", "EmployeeID", nil, "jsmith", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &audit.Entry{
		ID:         "a1",
		Action:     audit.ActionDelete,
		EntityName: "EmployeeID",
		Username:   "jsmith",
		CreatedAt:  now,
	}
	if err := store.Audit().Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
