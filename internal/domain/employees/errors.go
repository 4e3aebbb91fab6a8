package employees

import "errors"

var (
	ErrNotFound          = errors.New("employee not found")
	ErrNameRequired      = errors.New("employee name is required")
	ErrPINRequired       = errors.New("KRA PIN is required")
	ErrInvalidPIN        = errors.New("KRA PIN must be a letter, nine digits and a letter")
	ErrInvalidNationalID = errors.New("national ID must be 7 or 8 digits")
	ErrInvalidEmployeeID = errors.New("invalid employee id")
)
