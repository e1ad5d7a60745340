// Package loans builds the amortization schedule of the plan's bank loan so
// that its interest can be charged to the income statement.
package loans

import (
	"math"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given monthly installment. Month starts at 1.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// Loan is a fixed-rate loan repaid in equal monthly installments.
// AnnualRate is a percentage, e.g. 4.5.
type Loan struct {
	Name       string
	Principal  float64
	AnnualRate float64
	TermMonths int
}

// Valid reports whether a schedule can be built for the loan.
func (l Loan) Valid() bool {
	return l.Principal > 0 && l.TermMonths > 0 && l.AnnualRate >= 0 &&
		!math.IsNaN(l.Principal) && !math.IsInf(l.Principal, 0) &&
		!math.IsNaN(l.AnnualRate) && !math.IsInf(l.AnnualRate, 0)
}

// YearSummary totals one year of installments. Year 1 covers months 1 to 12.
type YearSummary struct {
	Year           int     `json:"year"`
	Payment        float64 `json:"payment"`
	Principal      float64 `json:"principal"`
	Interest       float64 `json:"interest"`
	ClosingBalance float64 `json:"closingBalance"`
}

// MonthlyPayment calculates the installment using the standard amortization formula.
func MonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// InterestPayment calculates the interest portion of an installment.
func InterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// ScheduleGenerator builds amortization schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance.
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate returns one Payment per month of the term, or nil when the loan is
// not valid. The final installment clears whatever principal is left so the
// balance closes at exactly zero.
func (g *ScheduleGenerator) Generate(loan Loan) []Payment {
	if !loan.Valid() {
		g.logger.Debug("skipping loan schedule for incomplete loan",
			zap.String("op", "loans.Generate"),
			zap.String("loan", loan.Name),
		)
		return nil
	}

	installment := MonthlyPayment(loan.Principal, loan.AnnualRate, loan.TermMonths)
	schedule := make([]Payment, 0, loan.TermMonths)
	remaining := loan.Principal

	for month := 1; month <= loan.TermMonths; month++ {
		p := Payment{Month: month}
		p.Interest = InterestPayment(remaining, loan.AnnualRate)
		p.Principal = installment - p.Interest

		if month == loan.TermMonths || mathutil.Round(remaining-p.Principal) <= 0 {
			// We will get machine error otherwise so just settle the balance.
			p.Principal = remaining
			p.Payment = p.Principal + p.Interest
			p.RemainingPrincipal = 0
			schedule = append(schedule, p)
			break
		}

		p.Payment = installment
		p.RemainingPrincipal = remaining - p.Principal
		remaining = p.RemainingPrincipal
		schedule = append(schedule, p)
	}

	g.logger.Debug("generated loan schedule",
		zap.String("op", "loans.Generate"),
		zap.String("loan", loan.Name),
		zap.Int("installments", len(schedule)),
		zap.Float64("installment", installment),
	)
	return schedule
}

// Schedule is Generate without logging.
func Schedule(principal, annualRate float64, termMonths int) []Payment {
	return NewScheduleGenerator(nil).Generate(Loan{Principal: principal, AnnualRate: annualRate, TermMonths: termMonths})
}

// YearTotals sums the installments falling in the given year. A year past the
// end of the schedule totals zero with a zero closing balance.
func YearTotals(schedule []Payment, year int) YearSummary {
	summary := YearSummary{Year: year}
	if year < 1 {
		return summary
	}

	first := (year-1)*constants.MonthsPerYear + 1
	last := year * constants.MonthsPerYear
	for _, p := range schedule {
		if p.Month < first || p.Month > last {
			continue
		}
		summary.Payment += p.Payment
		summary.Principal += p.Principal
		summary.Interest += p.Interest
		summary.ClosingBalance = p.RemainingPrincipal
	}
	if len(schedule) > 0 && first > schedule[len(schedule)-1].Month {
		summary.ClosingBalance = 0
	}
	return summary
}
