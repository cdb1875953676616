// Package staff holds the employee records the authorization core guards.
package staff

import "time"

// Employee is the business entity behind the guarded mutations.
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Salary     int64     `json:"salary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuditID exposes the employee's identifier to the audit trail.
func (e *Employee) AuditID() string {
	return e.ID
}

// EmployeeID names an employee in operations that carry no full record, such
// as deletes. It still lands in the audit trail.
type EmployeeID string

// AuditID implements the audit identifier capability.
func (id EmployeeID) AuditID() string {
	return string(id)
}
