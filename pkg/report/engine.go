package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPeriodDays is the activity window used for the inactivity flag.
const DefaultPeriodDays = 30

// excludedForDisabledCheck is removed from the paid set when evaluating
// whether a disabled account is wastefully licensed, because the tenant
// provisions it automatically.
const excludedForDisabledCheck = "EXCHANGEENTERPRISE"

// Engine runs the license join/flagging/aggregation pipeline. It performs no
// I/O: inputs are fully materialized snapshots and the clock is injectable,
// so a run is deterministic and independently testable.
type Engine struct {
	costs      CostTable
	periodDays int
	now        func() time.Time
	loc        *time.Location
}

// NewEngine builds an engine over an immutable copy of the given cost table.
// Calendar dates are evaluated in US Eastern, matching the reporting
// conventions of the tenant.
func NewEngine(costs CostTable, periodDays int) (*Engine, error) {
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("failed to load report timezone: %w", err)
	}
	return &Engine{
		costs:      costs.Clone(),
		periodDays: periodDays,
		now:        time.Now,
		loc:        loc,
	}, nil
}

// WithClock fixes the engine's notion of "now". Tests use this to pin the
// inactivity cutoff.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run executes the pipeline over one report snapshot and produces the four
// output tables. Input slices are not mutated.
func (e *Engine) Run(skus []SkuRecord, users []UserRecord, activity []ActivityRecord) (*Result, error) {
	for _, sku := range skus {
		if sku.PartNumber == "" {
			return nil, fmt.Errorf("subscribed SKU %q has no part number", sku.SkuID)
		}
	}

	// Left-join key: lower-cased UPN. Duplicate activity rows for one UPN
	// overwrite in source order, so the last occurrence wins.
	lastActivityRaw := make(map[string]string, len(activity))
	for _, a := range activity {
		lastActivityRaw[a.UPNLower] = a.LastActivityRaw
	}

	partBySkuID := make(map[string]string, len(skus))
	for _, sku := range skus {
		partBySkuID[sku.SkuID] = sku.PartNumber
	}

	cutoff := CivilDate(e.now(), e.loc).AddDate(0, 0, -e.periodDays)

	merged := make([]MergedUser, 0, len(users))
	for _, u := range users {
		merged = append(merged, e.mergeUser(u, lastActivityRaw, partBySkuID, cutoff))
	}

	ruleA, ruleB := e.deriveActionable(merged)
	actionable := dedupeActionable(append(append([]ActionableEntry{}, ruleA...), ruleB...))

	util := utilization(merged)

	summary := e.skuSummary(skus, util)

	totalLicensed, totalActive := 0, 0
	for _, u := range util {
		totalLicensed += u.LicensedUsers
		totalActive += u.ActiveUsers
	}
	overallPct := 0.0
	if totalLicensed > 0 {
		overallPct = math.Round(float64(totalActive)/float64(totalLicensed)*100*100) / 100
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UserPrincipalName < merged[j].UserPrincipalName
	})

	res := &Result{
		SkuSummary:            summary,
		Actionable:            actionable,
		Users:                 merged,
		Utilization:           util,
		TotalLicensedUsers:    totalLicensed,
		TotalActiveUsers:      totalActive,
		OverallUtilizationPct: overallPct,
		CountLicensedInactive: distinctUPNs(ruleA),
		CountDisabledLicensed: distinctUPNs(ruleB),
	}
	res.KPIs = e.kpis(res)
	return res, nil
}

func (e *Engine) mergeUser(u UserRecord, lastActivityRaw map[string]string, partBySkuID map[string]string, cutoff time.Time) MergedUser {
	upnLower := strings.ToLower(strings.TrimSpace(u.UserPrincipalName))

	var lastActivity *time.Time
	if raw, ok := lastActivityRaw[upnLower]; ok {
		if t, ok := ParseDateAny(raw); ok {
			d := CivilDate(t, e.loc)
			lastActivity = &d
		}
	}

	var created *time.Time
	if u.Created != nil {
		d := CivilDate(*u.Created, e.loc)
		created = &d
	}

	// Inactive when no activity was recorded at all, or the last activity
	// is on or before the cutoff date.
	inactive := lastActivity == nil || !lastActivity.After(cutoff)

	seen := make(map[string]struct{}, len(u.LicenseSkuIDs))
	licenses := make([]string, 0, len(u.LicenseSkuIDs))
	for _, id := range u.LicenseSkuIDs {
		part, ok := partBySkuID[id]
		if !ok {
			part = id // unresolved ids pass through verbatim
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		licenses = append(licenses, part)
	}
	sort.Strings(licenses)

	hasPaid, hasPaidExcl := false, false
	for _, part := range licenses {
		if !e.costs.Paid(part) {
			continue
		}
		hasPaid = true
		if part != excludedForDisabledCheck {
			hasPaidExcl = true
		}
	}

	return MergedUser{
		DisplayName:               u.DisplayName,
		UserPrincipalName:         u.UserPrincipalName,
		UserType:                  u.UserType,
		AccountEnabled:            u.AccountEnabled,
		Created:                   created,
		Licenses:                  licenses,
		LastActivity:              lastActivity,
		Inactive:                  inactive,
		HasLicense:                len(licenses) > 0,
		HasPaidLicense:            hasPaid,
		HasPaidLicenseExclExchEnt: hasPaidExcl,
	}
}

// deriveActionable applies the two review rules independently. The returned
// slices are pre-dedup: the KPI lines count distinct UPNs per rule before
// the union is deduplicated.
func (e *Engine) deriveActionable(merged []MergedUser) (ruleA, ruleB []ActionableEntry) {
	for _, u := range merged {
		if u.HasLicense && u.Inactive && u.HasPaidLicense {
			ruleA = append(ruleA, ActionableEntry{Reason: ReasonLicensedInactive, MergedUser: u})
		}
		if u.HasLicense && u.HasPaidLicenseExclExchEnt && !u.AccountEnabled {
			ruleB = append(ruleB, ActionableEntry{Reason: ReasonDisabledLicensed, MergedUser: u})
		}
	}
	return ruleA, ruleB
}

func dedupeActionable(entries []ActionableEntry) []ActionableEntry {
	type key struct {
		reason Reason
		upn    string
	}
	seen := make(map[key]struct{}, len(entries))
	out := make([]ActionableEntry, 0, len(entries))
	for _, entry := range entries {
		k := key{entry.Reason, entry.UserPrincipalName}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reason != out[j].Reason {
			return out[i].Reason < out[j].Reason
		}
		return out[i].UserPrincipalName < out[j].UserPrincipalName
	})
	return out
}

// utilization counts, per SKU part number, how many licensed users hold it
// and how many of those were active inside the window.
func utilization(merged []MergedUser) []SkuUtilization {
	counts := map[string]*SkuUtilization{}
	for _, u := range merged {
		if !u.HasLicense {
			continue
		}
		for _, part := range u.Licenses {
			c, ok := counts[part]
			if !ok {
				c = &SkuUtilization{PartNumber: part}
				counts[part] = c
			}
			c.LicensedUsers++
			if !u.Inactive {
				c.ActiveUsers++
			}
		}
	}

	out := make([]SkuUtilization, 0, len(counts))
	for _, c := range counts {
		if c.LicensedUsers > 0 {
			ratio := float64(c.ActiveUsers) / float64(c.LicensedUsers)
			c.UtilizationPct = math.Round(ratio*10000) / 10000 * 100
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

// skuSummary merges utilization counts into the SKU snapshot and filters to
// the paid, meaningfully-sized SKUs the cost-facing sheet should show.
func (e *Engine) skuSummary(skus []SkuRecord, util []SkuUtilization) []SkuSummaryRow {
	utilByPart := make(map[string]SkuUtilization, len(util))
	for _, u := range util {
		utilByPart[u.PartNumber] = u
	}

	out := make([]SkuSummaryRow, 0, len(skus))
	for _, sku := range skus {
		unitCost := e.costs.UnitCost(sku.PartNumber)
		estCost := unitCost.Mul(decimal.NewFromInt(int64(sku.Consumed))).Round(2)

		if sku.Enabled <= 0 || isBulkQuantity(sku.Enabled) {
			continue
		}
		if !unitCost.IsPositive() || !estCost.IsPositive() {
			continue
		}

		u := utilByPart[sku.PartNumber]
		out = append(out, SkuSummaryRow{
			SkuRecord:      sku,
			LicensedUsers:  u.LicensedUsers,
			ActiveUsers:    u.ActiveUsers,
			UtilizationPct: u.UtilizationPct,
			UnitCost:       unitCost,
			EstMonthlyCost: estCost,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

// isBulkQuantity flags purchase counts that look like bulk/placeholder
// quantities. Kept as the historical decimal-string suffix check rather
// than a numeric threshold.
func isBulkQuantity(enabled int) bool {
	s := strconv.Itoa(enabled)
	return strings.HasSuffix(s, "00") || strings.HasSuffix(s, "000")
}

func distinctUPNs(entries []ActionableEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		seen[entry.UserPrincipalName] = struct{}{}
	}
	return len(seen)
}

func (e *Engine) kpis(res *Result) []KPIRow {
	return []KPIRow{
		{Metric: "Report Timestamp", Value: e.now().UTC().Format("01-02-06")},
		{Metric: "Licensed Users", Value: res.TotalLicensedUsers},
		{Metric: fmt.Sprintf("Users Active in Last %d days", e.periodDays), Value: res.TotalActiveUsers},
		{Metric: fmt.Sprintf("Overall %% Utilization %d days", e.periodDays), Value: formatPct(res.OverallUtilizationPct)},
		{Metric: "To-Do: Licensed but inactive 30 days", Value: res.CountLicensedInactive},
		{Metric: "To-Do: Disabled & licensed", Value: res.CountDisabledLicensed},
	}
}

// formatPct renders with at least one decimal place, so a zero rollup reads
// "0.0%" rather than "0%".
func formatPct(pct float64) string {
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
