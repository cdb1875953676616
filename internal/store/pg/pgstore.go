// Package pg implements the employee, user and audit stores on PostgreSQL
// through database/sql and the pgx stdlib driver.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"staffhub.org/internal/audit"
	"staffhub.org/internal/auth"
	"staffhub.org/internal/ids"
	"staffhub.org/internal/staff"
)

// Store bundles the per-aggregate stores over one connection pool.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Employees returns the employee store.
func (s *Store) Employees() staff.Store { return &employeeStore{db: s.db} }

// Users returns the identity store.
func (s *Store) Users() auth.UserStore { return &userStore{db: s.db} }

// Audit returns the append-only audit store.
func (s *Store) Audit() audit.Store { return &auditStore{db: s.db} }

// Employee store ------------------------------------------------------------

type employeeStore struct{ db *sql.DB }

const employeeColumns = `id, name, email, department, salary, created_at, updated_at`

func (s *employeeStore) Create(ctx context.Context, e *staff.Employee) error {
	if e.ID == "" {
		e.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into employees(id, name, email, department, salary, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Name, e.Email, e.Department, e.Salary, e.CreatedAt, e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return staff.ErrEmailTaken
	}
	return err
}

func (s *employeeStore) Find(ctx context.Context, id string) (*staff.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from employees where id=$1`, employeeColumns), id)
	return scanEmployee(row)
}

func (s *employeeStore) FindByEmail(ctx context.Context, email string) (*staff.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from employees where email=$1`, employeeColumns), email)
	return scanEmployee(row)
}

func (s *employeeStore) List(ctx context.Context) ([]*staff.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from employees order by created_at asc`, employeeColumns))
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (s *employeeStore) ListByDepartment(ctx context.Context, department string) ([]*staff.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from employees where lower(department)=lower($1) order by created_at asc`, employeeColumns),
		department)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (s *employeeStore) SearchByName(ctx context.Context, name string) ([]*staff.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from employees where name ilike '%%' || $1 || '%%' order by created_at asc`, employeeColumns),
		name)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (s *employeeStore) Update(ctx context.Context, e *staff.Employee) error {
	res, err := s.db.ExecContext(ctx,
		`update employees set name=$2, email=$3, department=$4, salary=$5, updated_at=$6 where id=$1`,
		e.ID, e.Name, e.Email, e.Department, e.Salary, e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return staff.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	return requireRow(res, staff.ErrNotFound)
}

func (s *employeeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from employees where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, staff.ErrNotFound)
}

func (s *employeeStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `select count(*) from employees`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*staff.Employee, error) {
	var e staff.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Department, &e.Salary, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, staff.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEmployees(rows *sql.Rows) ([]*staff.Employee, error) {
	defer rows.Close()
	var out []*staff.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// User store ----------------------------------------------------------------

type userStore struct{ db *sql.DB }

const userColumns = `id, username, password_hash, email, full_name, roles, active, created_at, updated_at`

func (s *userStore) Create(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	roles, err := json.Marshal(auth.RoleNames(u.Roles))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`insert into users(id, username, password_hash, email, full_name, roles, active, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Username, u.PasswordHash, u.Email, u.FullName, roles, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from users where username=$1`, userColumns), username)
	return scanUser(row)
}

func (s *userStore) FindActiveByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select %s from users where username=$1 and active`, userColumns), username)
	return scanUser(row)
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u     auth.User
		roles []byte
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &roles, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var names []string
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &names); err != nil {
			return nil, fmt.Errorf("decode roles: %w", err)
		}
	}
	u.Roles = auth.ParseRoles(names)
	return &u, nil
}

// Audit store ---------------------------------------------------------------

type auditStore struct{ db *sql.DB }

func (s *auditStore) Append(ctx context.Context, entry *audit.Entry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into audit_log(id, action, entity_name, entity_id, username, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		entry.ID, string(entry.Action), entry.EntityName, nullable(entry.EntityID), entry.Username, entry.CreatedAt,
	)
	return err
}

// Helpers -------------------------------------------------------------------

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return missing
	}
	return nil
}

// isUniqueViolation matches PostgreSQL error code 23505.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
