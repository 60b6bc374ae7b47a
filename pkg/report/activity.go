package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column fallback chains of the active-user-detail export. Microsoft has
// shipped this report with different headers over time, so each value is
// taken from the first populated column in its chain.
var (
	upnColumns      = []string{"User Principal Name", "UPN", "User Id"}
	activityColumns = []string{"Last Activity Date", "Last Activity Date (UTC)", "Report Refresh Date"}
)

// Prefixes of anonymized/placeholder identities the report emits when
// usage-data concealment is turned on. Rows matching these carry no real UPN
// and are dropped.
var placeholderPrefixes = []string{"user ", "hidden", "redacted"}

// ParseActivityCSV normalizes the raw active-user-detail CSV into
// (upnLower, raw activity date) pairs. UPNs are trimmed and lower-cased;
// placeholder rows are skipped; source row order is preserved and duplicate
// UPNs are kept (the engine's join lets the last occurrence win). The date
// string is passed through uninterpreted.
func ParseActivityCSV(r io.Reader) ([]ActivityRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read activity report header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}

	var records []ActivityRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read activity report row: %w", err)
		}

		upn := strings.ToLower(strings.TrimSpace(firstPopulated(row, index, upnColumns)))
		if upn == "" || isPlaceholder(upn) {
			continue
		}

		records = append(records, ActivityRecord{
			UPNLower:        upn,
			LastActivityRaw: firstPopulated(row, index, activityColumns),
		})
	}
	return records, nil
}

func firstPopulated(row []string, index map[string]int, columns []string) string {
	for _, col := range columns {
		i, ok := index[col]
		if !ok || i >= len(row) {
			continue
		}
		if v := row[i]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isPlaceholder(upnLower string) bool {
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(upnLower, prefix) {
			return true
		}
	}
	return false
}
