// Package constants provides shared constants for the proforma engine.
package constants

// Financial constants
const (
	// ProjectionYears is the length of the growth forecast horizon, Year 1 included.
	ProjectionYears = 5

	// CorporateTaxRate is the flat IRES proxy rate applied to taxable income.
	CorporateTaxRate = 0.24

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DisplayDecimals is the number of decimals shown for monetary amounts.
	DisplayDecimals = 2

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// RevenueEstimateFloor is the smallest bare number the free-text revenue
	// extractor accepts as a revenue figure.
	RevenueEstimateFloor = 1000.0
)

// Formatting constants
const (
	// CurrencySymbol is appended to formatted amounts when a symbol is requested.
	CurrencySymbol = "€"

	// ThousandsSeparator groups integer digits in formatted amounts.
	ThousandsSeparator = "."

	// DecimalSeparator separates the fractional part in formatted amounts.
	DecimalSeparator = ","
)

// Reserved operating cost line identifiers.
const (
	// CostItemAmortization is sourced from the fixed asset register.
	CostItemAmortization = "amortization"

	// CostItemTax is computed from taxable income.
	CostItemTax = "tax"

	// CostItemFinancialCharges is engine-written when a bank loan schedule is
	// configured and an ordinary percentage line otherwise.
	CostItemFinancialCharges = "oneri_finanziari"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"

	// OutputFormatMarkdown is the plain-text markdown export
	OutputFormatMarkdown = "markdown"

	// OutputFormatXLSX is the spreadsheet export
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default plan file name
	DefaultConfigFile = "plan.yaml"

	// ExampleConfigFile is the example plan file name
	ExampleConfigFile = "plan.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix namespaces environment overrides read by viper.
	EnvPrefix = "PROFORMA"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024

	// DefaultSessionLimit caps the editing sessions the server keeps in memory
	DefaultSessionLimit = 256

	// SessionHeader carries the editing session identifier on preview requests
	SessionHeader = "X-Proforma-Session"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// FullCollectionPercent is the expected sum of the collection buckets.
	FullCollectionPercent = 100.0
)
