package analytics

import (
	"time"

	"github.com/gestfac/gestfac/internal/shared"
)

// PeriodType selects how the reporting window maps onto calendar months.
type PeriodType string

const (
	PeriodMonthly   PeriodType = "mensal"
	PeriodQuarterly PeriodType = "trimestral"
	PeriodYearly    PeriodType = "anual"
	PeriodCustom    PeriodType = "custom"
)

// PeriodSelection is the user-facing period choice.
type PeriodSelection struct {
	Type           PeriodType `json:"period_type"`
	ReferenceMonth string     `json:"reference_month"`
	CustomFrom     string     `json:"custom_from"`
	CustomTo       string     `json:"custom_to"`
}

const monthLayout = "2006-01"

// PeriodMonths resolves a selection to the ordered, duplicate-free list of
// "YYYY-MM" months it covers. A missing reference month defaults to the
// current calendar month at evaluation time. A custom range with from after
// to resolves to the empty set.
func PeriodMonths(sel PeriodSelection, now time.Time) []string {
	ref := sel.ReferenceMonth
	if !shared.ValidMonth(ref) {
		ref = now.Format(monthLayout)
	}
	refTime, err := time.Parse(monthLayout, ref)
	if err != nil {
		refTime = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	switch sel.Type {
	case PeriodQuarterly:
		months := make([]string, 0, 3)
		for i := 2; i >= 0; i-- {
			months = append(months, refTime.AddDate(0, -i, 0).Format(monthLayout))
		}
		return months
	case PeriodYearly:
		months := make([]string, 0, 12)
		for m := time.January; m <= time.December; m++ {
			months = append(months, time.Date(refTime.Year(), m, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout))
		}
		return months
	case PeriodCustom:
		return monthRange(sel.CustomFrom, sel.CustomTo)
	default:
		return []string{refTime.Format(monthLayout)}
	}
}

// monthRange enumerates months from from to to inclusive; inverted or
// malformed bounds yield an empty set.
func monthRange(from, to string) []string {
	if !shared.ValidMonth(from) || !shared.ValidMonth(to) {
		return nil
	}
	start, err := time.Parse(monthLayout, from)
	if err != nil {
		return nil
	}
	end, err := time.Parse(monthLayout, to)
	if err != nil {
		return nil
	}
	var months []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months = append(months, cur.Format(monthLayout))
	}
	return months
}
