package analytics

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/receivables"
)

// FilterState is the immutable dimension selection threaded through the
// aggregation pipeline. Empty slices mean "no constraint", never "match
// nothing" — the inclusive default is deliberate.
type FilterState struct {
	Months       []string
	ContractIDs  []uuid.UUID
	Clients      []string
	Statuses     []string
	Units        []string
	Responsibles []string
	Search       string
}

func (f FilterState) monthSet() map[string]struct{} {
	set := make(map[string]struct{}, len(f.Months))
	for _, m := range f.Months {
		set[m] = struct{}{}
	}
	return set
}

func (f FilterState) contractSet() map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(f.ContractIDs))
	for _, id := range f.ContractIDs {
		set[id] = struct{}{}
	}
	return set
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

func inSet[K comparable](set map[K]struct{}, key K) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[key]
	return ok
}

// FilterEntries keeps entries whose reference month belongs to the period
// and whose contract passes the contract dimension. Order preserving.
func FilterEntries(entries []finance.Entry, f FilterState) []finance.Entry {
	months := f.monthSet()
	ids := f.contractSet()
	out := make([]finance.Entry, 0, len(entries))
	for _, e := range entries {
		if !inSet(months, truncMonth(e.ReferenceMonth)) {
			continue
		}
		if !inSet(ids, e.ContractID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterReceivables applies every non-empty dimension to the receivable set.
// Status matching uses the derived status as of asOf, not the stored one.
// Order preserving, no hidden state: calling twice yields identical output.
func FilterReceivables(records []receivables.Receivable, f FilterState, asOf time.Time) []receivables.Receivable {
	months := f.monthSet()
	ids := f.contractSet()
	clients := lowerSet(f.Clients)
	units := lowerSet(f.Units)
	responsibles := lowerSet(f.Responsibles)
	statuses := make(map[receivables.Status]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses[receivables.NormalizeStatus(s)] = struct{}{}
	}
	search := strings.ToLower(f.Search)

	out := make([]receivables.Receivable, 0, len(records))
	for _, rec := range records {
		if !inSet(months, truncMonth(rec.Month())) {
			continue
		}
		if !inSet(ids, rec.ContractID) {
			continue
		}
		if !inSet(clients, strings.ToLower(rec.ClientName)) {
			continue
		}
		if !inSet(units, strings.ToLower(rec.Unit)) {
			continue
		}
		if !inSet(responsibles, strings.ToLower(rec.Responsible)) {
			continue
		}
		if !inSet(statuses, rec.EffectiveStatus(asOf)) {
			continue
		}
		if search != "" && !searchReceivable(rec, search) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func searchReceivable(rec receivables.Receivable, lowered string) bool {
	for _, field := range []string{rec.DocumentNumber, rec.ClientName, rec.ContractName, rec.Responsible, rec.Unit} {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	return false
}

// truncMonth normalizes timestamps or full dates down to the "YYYY-MM"
// competence bucket.
func truncMonth(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
