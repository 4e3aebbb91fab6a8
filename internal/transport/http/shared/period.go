package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"p9ify/internal/domain/payroll"
)

// DecodeJSON reads a JSON body. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Year parses a path parameter as a four digit year.
func (v *Validator) Year(field, raw string) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < 1000 || year > 9999 {
		v.Add(field, "must be a four digit year")
		return 0
	}
	return year
}

// Month accepts a month name, a three letter abbreviation or 1-12.
func (v *Validator) Month(field, raw string) time.Month {
	month, err := payroll.ParseMonth(raw)
	if err != nil {
		v.Add(field, "must be a month name or number 1-12")
		return 0
	}
	return month
}

// PayrollKey reads the {year}/{month}/{employeeID} path parameters.
func PayrollKey(r *http.Request, v *Validator) payroll.Key {
	year := v.Year("year", chi.URLParam(r, "year"))
	month := v.Month("month", chi.URLParam(r, "month"))
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))
	v.Required("employeeID", employeeID, "is required")
	return payroll.Key{Year: year, Month: month, EmployeeID: employeeID}
}
