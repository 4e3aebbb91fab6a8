package employees

const (
	KeyPrefix = "gen_employees/"

	DefaultListLimit = 50
	MaxListLimit     = 500
)
