package intent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload is the loosely typed JSON object a language model returns.
// Field names follow the prompt schema.
type Payload struct {
	Intent       Text    `json:"intent"`
	EmployeeName Text    `json:"employee_name"`
	LeaveType    Text    `json:"leave_type"`
	StartDate    Text    `json:"start_date"`
	EndDate      Text    `json:"end_date"`
	ReviewerName Text    `json:"reviewer_name"`
	ManagerName  Text    `json:"manager_name"`
	Email        Text    `json:"email"`
	Category     Text    `json:"category"`
	Amount       *Number `json:"amount"`
	Department   Text    `json:"department"`
	Position     Text    `json:"position"`
	Status       Text    `json:"status"`
	LeaveID      Text    `json:"leave_id"`
	ReviewID     Text    `json:"review_id"`
	Score        *Number `json:"score"`
	NewBalance   *Number `json:"new_balance"`
}

// Text is a string field that also accepts JSON numbers and booleans.
// Models occasionally emit ids such as 3 instead of "3".
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*t = Text(data)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// String returns the trimmed value
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// Number is a numeric field that also accepts numeric strings such as "85" or "1.500.000".
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := parseLooseNumber(s)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("expected number, got %s", data)
	}
	*n = Number(f)
	return nil
}

// Int rounds the number to the nearest integer
func (n Number) Int() int {
	return int(math.Round(float64(n)))
}

// parseLooseNumber accepts "85", "85.5", "Rp 1.500.000" and "1,500,000"
func parseLooseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	// thousands separators, either convention
	cleaned := strings.NewReplacer(".", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
