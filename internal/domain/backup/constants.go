package backup

const (
	SchemaVersion = "1.0.0"
	AppName       = "p9ify"

	KeyPrefix  = "payroll_backups/"
	MaxBackups = 10

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"

	IssueTypeEmployee = "employee"
	IssueTypePayroll  = "payroll"
)
