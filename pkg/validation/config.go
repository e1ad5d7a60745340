package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/preview"
	"github.com/iwvelando/proforma/pkg/revenue"
)

var validate = validator.New()

// PlanValidator checks the user-entered parts of a plan.
type PlanValidator struct {
	FixedInvestments []assets.Entry   `validate:"dive"`
	InvestmentItems  []assets.Item    `validate:"dive"`
	RevenueStreams   []revenue.Stream `validate:"dive"`
	CostItems        []costs.Item     `validate:"dive"`
	Collection       preview.Collection
	Funding          funding.Sources
	GrowthPercent    format.Raw
}

// ValidateAll validates the plan and returns warnings
func (pv *PlanValidator) ValidateAll() []string {
	var warnings []string

	warnings = append(warnings, pv.structWarnings()...)
	warnings = append(warnings, ValidateCollection(pv.Collection)...)

	warnings = append(warnings, duplicateIDs("revenue stream", streamIDs(pv.RevenueStreams))...)
	warnings = append(warnings, duplicateIDs("investment item", itemIDs(pv.InvestmentItems))...)
	warnings = append(warnings, duplicateIDs("cost item", costIDs(pv.CostItems))...)

	for i, entry := range pv.FixedInvestments {
		name := fmt.Sprintf("Fixed investment %d", i+1)
		if entry.Label != "" {
			name = fmt.Sprintf("Fixed investment '%s'", entry.Label)
		}
		if entry.CategoryKey != "" {
			if _, ok := assets.Lookup(entry.CategoryKey); !ok {
				warnings = append(warnings, fmt.Sprintf("%s has unknown category '%s', classified by label instead",
					name, entry.CategoryKey))
			}
		}
		warnings = append(warnings, ValidateAmount(name, entry.Amount)...)
	}
	for _, item := range pv.InvestmentItems {
		warnings = append(warnings, ValidateAmount(fmt.Sprintf("Investment item '%s'", item.ID), item.Amount)...)
	}
	for _, stream := range pv.RevenueStreams {
		warnings = append(warnings, ValidateAmount(fmt.Sprintf("Revenue stream '%s'", stream.ID), stream.Amount)...)
	}

	percentages := 0.0
	for _, item := range pv.CostItems {
		if item.ID == constants.CostItemAmortization || item.ID == constants.CostItemTax {
			if !item.Percentage.IsBlank() {
				warnings = append(warnings, fmt.Sprintf("Cost item '%s' is computed; its percentage is ignored", item.ID))
			}
			continue
		}
		if item.ID == constants.CostItemFinancialCharges && pv.Funding.HasLoanSchedule() {
			continue
		}
		warnings = append(warnings, ValidateAmount(fmt.Sprintf("Cost item '%s' percentage", item.ID), item.Percentage)...)
		percentages += item.Percentage.Amount()
	}
	if percentages > constants.FullCollectionPercent {
		warnings = append(warnings, fmt.Sprintf("Cost percentages add up to %s of revenue", format.Percent(percentages)))
	}

	warnings = append(warnings, ValidateAmount("Equity", pv.Funding.Equity)...)
	warnings = append(warnings, ValidateAmount("Bank loan", pv.Funding.BankLoan)...)
	warnings = append(warnings, ValidateAmount("Other investors", pv.Funding.OtherInvestors)...)
	warnings = append(warnings, ValidateLoanTerms(pv.Funding)...)

	return warnings
}

// ValidateAmount warns about values that parse differently than the user
// probably intended: a minus sign, which is dropped, and text with no digits,
// which counts as zero.
func ValidateAmount(name string, raw format.Raw) []string {
	if raw.IsBlank() {
		return nil
	}
	s := strings.TrimSpace(string(raw))

	var warnings []string
	if strings.HasPrefix(s, "-") {
		warnings = append(warnings, fmt.Sprintf("%s '%s' is negative; the sign is ignored", name, s))
	}
	if !strings.ContainsAny(s, "0123456789") {
		warnings = append(warnings, fmt.Sprintf("%s '%s' is not a number and counts as 0", name, s))
	}
	return warnings
}

// ValidateCollection checks each collection bucket is a percentage and that
// the buckets account for all of revenue. The buckets are never adjusted.
func ValidateCollection(c preview.Collection) []string {
	if c.ImmediatePercent.IsBlank() && c.Days60Percent.IsBlank() && c.Days90Percent.IsBlank() {
		return nil
	}

	var warnings []string
	buckets := []struct {
		name string
		raw  format.Raw
	}{
		{"Immediate collection", c.ImmediatePercent},
		{"60-day collection", c.Days60Percent},
		{"90-day collection", c.Days90Percent},
	}
	for _, b := range buckets {
		if v := b.raw.Amount(); v > constants.FullCollectionPercent {
			warnings = append(warnings, fmt.Sprintf("%s %s is above 100%%", b.name, format.Percent(v)))
		}
		warnings = append(warnings, ValidateAmount(b.name, b.raw)...)
	}

	if sum := c.PercentSum(); sum != constants.FullCollectionPercent {
		warnings = append(warnings, fmt.Sprintf("Collection percentages add up to %s instead of 100%%", format.Percent(sum)))
	}
	return warnings
}

// ValidateLoanTerms warns when only part of the bank loan schedule is given.
func ValidateLoanTerms(s funding.Sources) []string {
	hasRate := !s.BankLoanRate.IsBlank()
	hasTerm := s.BankLoanTermMonths > 0
	switch {
	case hasRate && !hasTerm:
		return []string{"Bank loan rate is set without a term; financial charges use the cost percentage"}
	case hasTerm && !hasRate:
		return []string{"Bank loan term is set without a rate; financial charges use the cost percentage"}
	case hasRate && hasTerm && s.BankLoan.Amount() == 0:
		return []string{"Bank loan rate and term are set but the bank loan amount is zero"}
	}
	return nil
}

func (pv *PlanValidator) structWarnings() []string {
	err := validate.Struct(pv)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{fmt.Sprintf("Plan could not be validated: %v", err)}
	}

	warnings := make([]string, 0, len(validationErrors))
	for _, ve := range validationErrors {
		field := ve.Namespace()
		if _, rest, found := strings.Cut(field, "."); found {
			field = rest
		}
		warnings = append(warnings, fmt.Sprintf("%s failed the '%s' check", field, ve.Tag()))
	}
	return warnings
}

func duplicateIDs(kind string, ids []string) []string {
	var warnings []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if seen[id] {
			warnings = append(warnings, fmt.Sprintf("Duplicate %s id '%s'", kind, id))
		}
		seen[id] = true
	}
	return warnings
}

func streamIDs(streams []revenue.Stream) []string {
	ids := make([]string, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.ID)
	}
	return ids
}

func itemIDs(items []assets.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func costIDs(items []costs.Item) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
