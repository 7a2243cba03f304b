package history

import (
	"fmt"
	"strings"

	"fraudlens/internal/models"
)

// StatusFilter selects records by label.
type StatusFilter string

const (
	FilterAll   StatusFilter = "all"
	FilterFraud StatusFilter = "fraud"
	FilterSafe  StatusFilter = "safe"
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterFraud, FilterSafe:
		return f, nil
	default:
		return FilterAll, fmt.Errorf("unknown status filter %q", s)
	}
}

func (f StatusFilter) matches(fraud bool) bool {
	switch f {
	case FilterFraud:
		return fraud
	case FilterSafe:
		return !fraud
	default:
		return true
	}
}

// Filter keeps records whose label matches f and whose transaction id
// contains search, ignoring case. Order is preserved and the input is not
// modified.
func Filter(records []models.TransactionRecord, f StatusFilter, search string) []models.TransactionRecord {
	needle := strings.ToLower(search)
	out := make([]models.TransactionRecord, 0, len(records))
	for _, r := range records {
		if !f.matches(r.Prediction) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.TransactionID), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}
