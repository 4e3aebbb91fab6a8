package backup

import (
	"time"

	"p9ify/internal/domain/employees"
	"p9ify/internal/domain/payroll"
	"p9ify/internal/domain/settings"
)

// Data is the full application state: the three documents a restore replaces.
type Data struct {
	Employees []employees.Employee      `json:"employees"`
	Payrolls  map[string]payroll.Result `json:"payrolls"`
	Settings  settings.Input            `json:"settings"`
}

type Counts struct {
	Employees int `json:"employees"`
	Payrolls  int `json:"payrolls"`
}

type Metadata struct {
	ExportedAt    time.Time `json:"exportedAt"`
	SchemaVersion string    `json:"schemaVersion"`
	AppName       string    `json:"appName"`
	Counts        Counts    `json:"counts"`
}

// Snapshot is the downloadable export. It decodes from exports made by the
// browser tool as well, which carry the same three top-level documents.
type Snapshot struct {
	Metadata Metadata `json:"metadata"`
	Data
}

type Summary struct {
	EmployeeCount int    `json:"employeeCount"`
	PayrollCount  int    `json:"payrollCount"`
	CompanyName   string `json:"companyName"`
}

// Info describes a stored automatic backup without its contents.
type Info struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Size      int       `json:"size"`
	Summary   Summary   `json:"summary"`
	Encrypted bool      `json:"encrypted"`
}

// record is the stored form. Payload holds the sealed Data when encrypted.
type record struct {
	Info
	Data    *Data  `json:"data,omitempty"`
	Payload []byte `json:"payload,omitempty"`
}

type Issue struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Key      string `json:"key,omitempty"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}
