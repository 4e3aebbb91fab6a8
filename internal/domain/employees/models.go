package employees

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ID is an employee identifier. Ids minted here are millisecond
// timestamps and encode as JSON numbers; ids are accepted as numbers or
// strings on decode. Ids that are not in canonical decimal form ("007")
// stay strings so they survive a round trip.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseUint(string(id), 10, 64); err == nil && strconv.FormatUint(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return ErrInvalidEmployeeID
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return ErrInvalidEmployeeID
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Employee struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	PIN        string     `json:"pin"`
	EmployeeNo string     `json:"employeeId"`
	NationalID string     `json:"nationalId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type CreateInput struct {
	Name       string `json:"name"`
	PIN        string `json:"pin"`
	EmployeeNo string `json:"employeeId"`
	NationalID string `json:"nationalId"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name       *string `json:"name"`
	PIN        *string `json:"pin"`
	EmployeeNo *string `json:"employeeId"`
	NationalID *string `json:"nationalId"`
}
