package payroll

import "errors"

var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrMissingRateConfiguration = errors.New("missing rate configuration")
	ErrInvalidKey               = errors.New("invalid payroll key")
	ErrInvalidMonth             = errors.New("invalid month")
	ErrInvalidYear              = errors.New("invalid year")
	ErrInvalidBands             = errors.New("invalid PAYE bands")
	ErrRecordNotFound           = errors.New("payroll record not found")
	ErrEmployeeNotFound         = errors.New("employee not found")
)

// AmountError names the field that failed amount validation.
type AmountError struct {
	Field string
}

func (e *AmountError) Error() string {
	return "invalid amount: " + e.Field + " must be a non-negative number"
}

func (e *AmountError) Unwrap() error {
	return ErrInvalidAmount
}
