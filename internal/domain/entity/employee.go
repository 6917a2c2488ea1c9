package entity

import "time"

// Employee represents a person on the HR roster
type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Title      string    `json:"title"`
	Department string    `json:"department"`
	ManagerID  *int64    `json:"manager_id,omitempty"`
	JoinDate   time.Time `json:"join_date"`
	Status     string    `json:"status"`
}

// HasManager reports whether the employee points at another employee as manager.
// A manager id equal to the employee's own id is treated as no manager.
func (e *Employee) HasManager() bool {
	return e.ManagerID != nil && *e.ManagerID != e.ID
}
