package entity

import "time"

// PerformanceReview represents a scheduled or completed performance review
type PerformanceReview struct {
	ID         string       `json:"id"`
	EmployeeID int64        `json:"employee_id"`
	ReviewerID int64        `json:"reviewer_id"`
	ReviewDate time.Time    `json:"review_date"`
	Score      int          `json:"score"`
	Status     ReviewStatus `json:"status"`
}

// Expense is an expense claim filed by an employee
type Expense struct {
	ID         string    `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
