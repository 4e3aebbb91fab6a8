package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key identifies one employee's payroll for one month. Its string form,
// "{year}-{MonthName}-{employeeId}", is the persisted record key.
type Key struct {
	Year       int
	Month      time.Month
	EmployeeID string
}

func NewKey(year int, month time.Month, employeeID string) (Key, error) {
	k := Key{Year: year, Month: month, EmployeeID: strings.TrimSpace(employeeID)}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%s-%s", k.Year, k.Month, k.EmployeeID)
}

// Label is the human month label, e.g. "January 2026".
func (k Key) Label() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

func (k Key) Validate() error {
	if k.Year < minKeyYear || k.Year > maxKeyYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, k.Year)
	}
	if k.Month < time.January || k.Month > time.December {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, int(k.Month))
	}
	if k.EmployeeID == "" {
		return fmt.Errorf("%w: missing employee id", ErrInvalidKey)
	}
	return nil
}

// ParseKey splits on the first two hyphens; the employee id keeps any
// hyphens of its own. Only the canonical form produced by String parses.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	if len(parts[0]) != 4 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	month, err := monthFromName(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	k := Key{Year: year, Month: month, EmployeeID: parts[2]}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	if k.String() != s {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return k, nil
}

// ParseMonth accepts a full month name, a three-letter abbreviation (both
// case-insensitive) or a number from 1 to 12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		return time.Month(n), nil
	}
	return monthFromName(s)
}

func monthFromName(s string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || (len(s) == 3 && strings.EqualFold(s, name[:3])) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// MonthPrefix is the storage prefix shared by every record of one month.
func MonthPrefix(year int, month time.Month) string {
	return fmt.Sprintf("%s%d-%s-", KeyPrefix, year, month)
}

func YearPrefix(year int) string {
	return fmt.Sprintf("%s%d-", KeyPrefix, year)
}

func storageKey(k Key) string {
	return KeyPrefix + k.String()
}
