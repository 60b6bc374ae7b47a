package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SkuRecord is one row of the tenant's subscribedSkus snapshot at report
// time. Unit counts come straight from Graph; derived cost fields are
// computed by the engine against the injected cost table.
type SkuRecord struct {
	SkuID      string
	PartNumber string
	Enabled    int
	Consumed   int
	Warning    int
	Suspended  int
}

// Remaining is the unassigned unit count, clamped at zero. Graph can report
// consumed > enabled during grace periods.
func (s SkuRecord) Remaining() int {
	if r := s.Enabled - s.Consumed; r > 0 {
		return r
	}
	return 0
}

// UserRecord is one directory account at report time. Created is the UTC
// creation instant, nil when the directory omits it.
type UserRecord struct {
	ID                string
	DisplayName       string
	UserPrincipalName string
	Mail              string
	AccountEnabled    bool
	UserType          string
	Created           *time.Time
	LicenseSkuIDs     []string
}

// ActivityRecord is one normalized row of the active-user-detail export.
// LastActivityRaw is kept uninterpreted; parsing happens in the engine so
// the normalizer stays a pure string transform.
type ActivityRecord struct {
	UPNLower        string
	LastActivityRaw string
}

// MergedUser is a user joined with its activity row and resolved licenses.
// Date fields are US Eastern calendar dates (midnight UTC) for display and
// for the inactivity comparison.
type MergedUser struct {
	DisplayName       string
	UserPrincipalName string
	UserType          string
	AccountEnabled    bool
	Created           *time.Time
	Licenses          []string
	LastActivity      *time.Time
	Inactive          bool
	HasLicense        bool
	HasPaidLicense    bool

	// HasPaidLicenseExclExchEnt evaluates the paid check with
	// EXCHANGEENTERPRISE removed from the paid set. That SKU is
	// auto-provisioned, so alone it should not flag a disabled account.
	HasPaidLicenseExclExchEnt bool
}

// LicenseString renders the resolved part numbers as the display string used
// in the workbook, sorted and ;-joined.
func (u MergedUser) LicenseString() string {
	return strings.Join(u.Licenses, ";")
}

// Reason tags an actionable row with the rule that produced it. The strings
// are the display values written to the Actionable sheet.
type Reason string

const (
	ReasonLicensedInactive Reason = "Licensed but no activity in last 30d"
	ReasonDisabledLicensed Reason = "Disabled account has licenses"
)

// ActionableEntry is a flagged user requiring administrative review. A user
// may appear once per reason.
type ActionableEntry struct {
	Reason Reason
	MergedUser
}

// SkuUtilization is the per-part-number assignment/activity rollup across
// all licensed users.
type SkuUtilization struct {
	PartNumber     string
	LicensedUsers  int
	ActiveUsers    int
	UtilizationPct float64
}

// SkuSummaryRow is a SKU snapshot merged with its utilization counts and
// cost columns for the cost-facing SKU_Summary sheet.
type SkuSummaryRow struct {
	SkuRecord
	LicensedUsers  int
	ActiveUsers    int
	UtilizationPct float64
	UnitCost       decimal.Decimal
	EstMonthlyCost decimal.Decimal
}

// KPIRow is one Metric/Value line of the Overview sheet.
type KPIRow struct {
	Metric string
	Value  any
}

// Result holds the four output tables of one report run plus the scalar
// rollups the KPI lines are built from.
type Result struct {
	KPIs        []KPIRow
	SkuSummary  []SkuSummaryRow
	Actionable  []ActionableEntry
	Users       []MergedUser
	Utilization []SkuUtilization

	TotalLicensedUsers    int
	TotalActiveUsers      int
	OverallUtilizationPct float64
	CountLicensedInactive int
	CountDisabledLicensed int
}

// CostTable maps SKU part numbers to their monthly per-unit cost. A SKU is
// paid when its cost is strictly positive; unknown part numbers cost zero.
type CostTable map[string]decimal.Decimal

// UnitCost returns the monthly cost for a part number, zero when unknown.
func (t CostTable) UnitCost(part string) decimal.Decimal {
	if c, ok := t[part]; ok {
		return c
	}
	return decimal.Zero
}

// Paid reports whether the part number carries a positive monthly cost.
func (t CostTable) Paid(part string) bool {
	return t.UnitCost(part).IsPositive()
}

// Clone returns a copy so a running engine is isolated from later mutation
// of the configuration it was built from.
func (t CostTable) Clone() CostTable {
	c := make(CostTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}
