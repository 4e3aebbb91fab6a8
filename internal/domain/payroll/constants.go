package payroll

const (
	// NSSFCapAmount is the statutory monthly ceiling on a derived NSSF
	// contribution. Fixed by law, so it is not part of persisted settings.
	NSSFCapAmount = 2160

	// E1Rate is the share of gross pay shown as the E1 column of a P9 card.
	E1Rate = 0.30

	DefaultSHIFPercent     = 2.75
	DefaultAHLPercent      = 1.5
	DefaultNSSFPercent     = 6
	DefaultPersonalRelief  = 2400
	DefaultInsuranceRelief = 0

	WarningNegativeNet  = "negative_net"
	WarningNSSFAboveCap = "nssf_above_cap"
	WarningMissingRate  = "missing_rate"

	KeyPrefix        = "gen_payrolls/"
	RatesFileVersion = 1

	minKeyYear = 1000
	maxKeyYear = 9999
)
