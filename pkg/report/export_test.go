package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetsLayout(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	lastActivity := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	res := &Result{
		KPIs: []KPIRow{
			{Metric: "Licensed Users", Value: 3},
			{Metric: "Overall % Utilization 30 days", Value: "66.67%"},
		},
		SkuSummary: []SkuSummaryRow{
			{
				SkuRecord:      SkuRecord{PartNumber: "ENTERPRISEPACK", Enabled: 25, Consumed: 20, Suspended: 1},
				LicensedUsers:  20,
				ActiveUsers:    15,
				UtilizationPct: 75,
				UnitCost:       decimal.NewFromFloat(36),
				EstMonthlyCost: decimal.NewFromFloat(720),
			},
		},
		Actionable: []ActionableEntry{
			{
				Reason: ReasonDisabledLicensed,
				MergedUser: MergedUser{
					DisplayName:       "Alice Adams",
					UserPrincipalName: "alice@example.com",
					UserType:          "Member",
					Created:           &created,
					Licenses:          []string{"ENTERPRISEPACK"},
				},
			},
		},
		Users: []MergedUser{
			{
				DisplayName:       "Alice Adams",
				UserPrincipalName: "alice@example.com",
				UserType:          "Member",
				AccountEnabled:    true,
				Created:           &created,
				Licenses:          []string{"ENTERPRISEPACK"},
				LastActivity:      &lastActivity,
			},
		},
	}

	sheets := Sheets(res)
	require.Len(t, sheets, 4)
	assert.Equal(t, SheetOverview, sheets[0].Name)
	assert.Equal(t, SheetSkuSummary, sheets[1].Name)
	assert.Equal(t, SheetActionable, sheets[2].Name)
	assert.Equal(t, SheetUsers, sheets[3].Name)

	overview := sheets[0]
	require.Len(t, overview.Columns, 2)
	assert.Equal(t, "Metric", overview.Columns[0].Header)
	require.Len(t, overview.Rows, 2)
	assert.Equal(t, []any{"Licensed Users", 3}, overview.Rows[0])

	sku := sheets[1]
	headers := make([]string, 0, len(sku.Columns))
	for _, c := range sku.Columns {
		headers = append(headers, c.Header)
	}
	assert.Equal(t, []string{
		"License SKU's", "Purchased", "Remaining", "Assigned",
		"Active (30d)", "Utilization (30d, %)", "Suspended", "Est. Monthly Cost ($)",
	}, headers)
	assert.Equal(t, 40.0, sku.Columns[0].Width)
	require.Len(t, sku.Rows, 1)
	assert.Equal(t, []any{"ENTERPRISEPACK", 25, 5, 20, 15, 75.0, 1, 720.0}, sku.Rows[0])

	actionable := sheets[2]
	assert.Equal(t, "Reason", actionable.Columns[0].Header)
	require.Len(t, actionable.Rows, 1)
	assert.Equal(t, "Disabled account has licenses", actionable.Rows[0][0])
	assert.Equal(t, "2024-03-01", actionable.Rows[0][5])
	assert.Equal(t, "ENTERPRISEPACK", actionable.Rows[0][6])
	assert.Nil(t, actionable.Rows[0][7], "missing activity date renders as blank cell")

	users := sheets[3]
	require.Len(t, users.Columns, 8)
	assert.Equal(t, "Inactive30d", users.Columns[7].Header)
	require.Len(t, users.Rows, 1)
	assert.Equal(t, "2025-07-10", users.Rows[0][6])
	assert.Equal(t, false, users.Rows[0][7])
}

func TestSheetsEmptyResult(t *testing.T) {
	sheets := Sheets(&Result{})
	require.Len(t, sheets, 4)
	for _, sheet := range sheets {
		assert.Empty(t, sheet.Rows, "sheet %s", sheet.Name)
		assert.NotEmpty(t, sheet.Columns, "sheet %s", sheet.Name)
	}
}
