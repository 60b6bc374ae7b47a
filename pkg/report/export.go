package report

import (
	"time"

	"github.com/mvas-it/m365ops/pkg/outputters"
)

// Sheet names of the workbook, in output order.
const (
	SheetOverview   = "Overview"
	SheetSkuSummary = "SKU_Summary"
	SheetActionable = "Actionable"
	SheetUsers      = "Users"
)

// Sheets lays out a result as the four workbook tables: column order, display
// headers and column widths. The Overview sheet doubles as the email body
// table.
func Sheets(res *Result) []outputters.Sheet {
	return []outputters.Sheet{
		overviewSheet(res),
		skuSummarySheet(res),
		actionableSheet(res),
		usersSheet(res),
	}
}

func overviewSheet(res *Result) outputters.Sheet {
	rows := make([][]any, 0, len(res.KPIs))
	for _, kpi := range res.KPIs {
		rows = append(rows, []any{kpi.Metric, kpi.Value})
	}
	return outputters.Sheet{
		Name: SheetOverview,
		Columns: []outputters.Column{
			{Header: "Metric"},
			{Header: "Value"},
		},
		Rows: rows,
	}
}

func skuSummarySheet(res *Result) outputters.Sheet {
	rows := make([][]any, 0, len(res.SkuSummary))
	for _, s := range res.SkuSummary {
		rows = append(rows, []any{
			s.PartNumber,
			s.Enabled,
			s.Remaining(),
			s.LicensedUsers,
			s.ActiveUsers,
			s.UtilizationPct,
			s.Suspended,
			s.EstMonthlyCost.InexactFloat64(),
		})
	}
	return outputters.Sheet{
		Name: SheetSkuSummary,
		Columns: []outputters.Column{
			{Header: "License SKU's", Width: 40},
			{Header: "Purchased"},
			{Header: "Remaining"},
			{Header: "Assigned"},
			{Header: "Active (30d)"},
			{Header: "Utilization (30d, %)"},
			{Header: "Suspended"},
			{Header: "Est. Monthly Cost ($)"},
		},
		Rows: rows,
	}
}

func actionableSheet(res *Result) outputters.Sheet {
	rows := make([][]any, 0, len(res.Actionable))
	for _, entry := range res.Actionable {
		rows = append(rows, []any{
			string(entry.Reason),
			entry.DisplayName,
			entry.UserPrincipalName,
			entry.UserType,
			entry.AccountEnabled,
			dateCell(entry.Created),
			entry.LicenseString(),
			dateCell(entry.LastActivity),
		})
	}
	return outputters.Sheet{
		Name: SheetActionable,
		Columns: []outputters.Column{
			{Header: "Reason", Width: 30},
			{Header: "displayName", Width: 25},
			{Header: "UPN"},
			{Header: "userType"},
			{Header: "accountEnabled"},
			{Header: "createdDateTime", Width: 15},
			{Header: "licenses", Width: 30},
			{Header: "LastActivityDate", Width: 15},
		},
		Rows: rows,
	}
}

func usersSheet(res *Result) outputters.Sheet {
	rows := make([][]any, 0, len(res.Users))
	for _, u := range res.Users {
		rows = append(rows, []any{
			u.DisplayName,
			u.UserPrincipalName,
			u.UserType,
			u.AccountEnabled,
			dateCell(u.Created),
			u.LicenseString(),
			dateCell(u.LastActivity),
			u.Inactive,
		})
	}
	return outputters.Sheet{
		Name: SheetUsers,
		Columns: []outputters.Column{
			{Header: "displayName", Width: 30},
			{Header: "UPN", Width: 25},
			{Header: "userType"},
			{Header: "accountEnabled"},
			{Header: "createdDateTime", Width: 15},
			{Header: "licenses", Width: 30},
			{Header: "LastActivityDate", Width: 15},
			{Header: "Inactive30d"},
		},
		Rows: rows,
	}
}

func dateCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
