package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed clock: 2025-07-15 noon UTC is 2025-07-15 in US Eastern, so the
// 30-day inactivity cutoff lands on 2025-06-15.
var testNow = time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

func testCosts() CostTable {
	return CostTable{
		"ENTERPRISEPACK":     decimal.NewFromInt(36),
		"POWER_BI_PRO":       decimal.NewFromInt(10),
		"EXCHANGEENTERPRISE": decimal.NewFromInt(8),
		"FLOW_FREE":          decimal.Zero,
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testCosts(), 30)
	require.NoError(t, err)
	return e.WithClock(func() time.Time { return testNow })
}

func TestRunKPIRollup(t *testing.T) {
	skus := []SkuRecord{
		{SkuID: "sku-1", PartNumber: "ENTERPRISEPACK", Enabled: 25, Consumed: 20},
		{SkuID: "sku-2", PartNumber: "POWER_BI_PRO", Enabled: 5, Consumed: 3},
		{SkuID: "sku-3", PartNumber: "FLOW_FREE", Enabled: 10, Consumed: 1},
	}
	users := []UserRecord{
		{ID: "u1", UserPrincipalName: "alice@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}},
		{ID: "u2", UserPrincipalName: "bob@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}},
		{ID: "u3", UserPrincipalName: "carol@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-2"}},
		{ID: "u4", UserPrincipalName: "dave@contoso.com", AccountEnabled: true},
		{ID: "u5", UserPrincipalName: "erin@contoso.com", AccountEnabled: true},
	}
	activity := []ActivityRecord{
		{UPNLower: "alice@contoso.com", LastActivityRaw: "2025-07-10"},
		{UPNLower: "bob@contoso.com", LastActivityRaw: "2025-05-01"},
	}

	res, err := testEngine(t).Run(skus, users, activity)
	require.NoError(t, err)

	// 3 licensed users, 1 active inside the window.
	assert.Equal(t, 3, res.TotalLicensedUsers)
	assert.Equal(t, 1, res.TotalActiveUsers)
	assert.Equal(t, 33.33, res.OverallUtilizationPct)

	// carol has no activity row and a paid license.
	assert.Equal(t, 2, res.CountLicensedInactive) // bob + carol
	assert.Equal(t, 0, res.CountDisabledLicensed)

	// Exactly one Users row per input user regardless of join fan-in.
	assert.Len(t, res.Users, 5)

	require.Len(t, res.KPIs, 6)
	assert.Equal(t, "Report Timestamp", res.KPIs[0].Metric)
	assert.Equal(t, "07-15-25", res.KPIs[0].Value)
	assert.Equal(t, 3, res.KPIs[1].Value)
	assert.Equal(t, 1, res.KPIs[2].Value)
	assert.Equal(t, "33.33%", res.KPIs[3].Value)
}

func TestRunZeroLicensedUsers(t *testing.T) {
	skus := []SkuRecord{{SkuID: "sku-1", PartNumber: "ENTERPRISEPACK", Enabled: 5, Consumed: 0}}
	users := []UserRecord{{ID: "u1", UserPrincipalName: "alice@contoso.com", AccountEnabled: true}}

	res, err := testEngine(t).Run(skus, users, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalLicensedUsers)
	assert.Equal(t, 0.0, res.OverallUtilizationPct)
	assert.Empty(t, res.Utilization, "only SKUs with licensed users appear")
	assert.Equal(t, "0.0%", res.KPIs[3].Value)
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "0.0%", formatPct(0))
	assert.Equal(t, "33.33%", formatPct(33.33))
	assert.Equal(t, "100.0%", formatPct(100))
}

func TestInactivityBoundary(t *testing.T) {
	// Bare activity dates parse as midnight UTC, which is still the previous
	// day in US Eastern, so each raw date lands one civil day earlier than
	// its string suggests. The cutoff is 2025-06-15 Eastern.
	cases := []struct {
		name     string
		activity string
		inactive bool
	}{
		{"no activity row", "", true},
		{"unparseable date", "nan", true},
		{"lands before cutoff", "2025-06-15", true},
		{"lands exactly on cutoff", "2025-06-16", true},
		{"lands one day after cutoff", "2025-06-17", false},
		{"well before cutoff", "2024-01-01", true},
		{"recent", "2025-07-15", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := []UserRecord{{ID: "u1", UserPrincipalName: "a@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}}}
			var activity []ActivityRecord
			if tc.activity != "" {
				activity = []ActivityRecord{{UPNLower: "a@contoso.com", LastActivityRaw: tc.activity}}
			}
			skus := []SkuRecord{{SkuID: "sku-1", PartNumber: "ENTERPRISEPACK", Enabled: 5, Consumed: 1}}

			res, err := testEngine(t).Run(skus, users, activity)
			require.NoError(t, err)
			require.Len(t, res.Users, 1)
			assert.Equal(t, tc.inactive, res.Users[0].Inactive)
		})
	}
}

func TestBareActivityDateLandsOnPreviousEasternDay(t *testing.T) {
	users := []UserRecord{{ID: "u1", UserPrincipalName: "a@contoso.com", AccountEnabled: true}}
	activity := []ActivityRecord{{UPNLower: "a@contoso.com", LastActivityRaw: "2025-06-16"}}

	res, err := testEngine(t).Run(nil, users, activity)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	require.NotNil(t, res.Users[0].LastActivity)
	assert.Equal(t, "2025-06-15", res.Users[0].LastActivity.Format("2006-01-02"))
}

func TestActionableRules(t *testing.T) {
	skus := []SkuRecord{
		{SkuID: "sku-exch", PartNumber: "EXCHANGEENTERPRISE", Enabled: 10, Consumed: 5},
		{SkuID: "sku-e3", PartNumber: "ENTERPRISEPACK", Enabled: 10, Consumed: 5},
	}
	users := []UserRecord{
		// Disabled with only the auto-provisioned SKU: no rule fires.
		{ID: "a", UserPrincipalName: "a@contoso.com", AccountEnabled: false, LicenseSkuIDs: []string{"sku-exch"}},
		// Disabled with a real paid SKU: disabled-but-licensed.
		{ID: "b", UserPrincipalName: "b@contoso.com", AccountEnabled: false, LicenseSkuIDs: []string{"sku-e3"}},
		// No activity row with a paid SKU: licensed-but-inactive.
		{ID: "c", UserPrincipalName: "c@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-e3"}},
	}
	activity := []ActivityRecord{
		{UPNLower: "a@contoso.com", LastActivityRaw: "2025-07-14"},
		{UPNLower: "b@contoso.com", LastActivityRaw: "2025-07-14"},
	}

	res, err := testEngine(t).Run(skus, users, activity)
	require.NoError(t, err)

	var reasons []string
	for _, entry := range res.Actionable {
		reasons = append(reasons, string(entry.Reason)+" "+entry.UserPrincipalName)
	}
	assert.Equal(t, []string{
		"Disabled account has licenses b@contoso.com",
		"Licensed but no activity in last 30d c@contoso.com",
	}, reasons)

	assert.Equal(t, 1, res.CountLicensedInactive)
	assert.Equal(t, 1, res.CountDisabledLicensed)
}

func TestActionableBothRulesKeepSeparateRows(t *testing.T) {
	skus := []SkuRecord{{SkuID: "sku-e3", PartNumber: "ENTERPRISEPACK", Enabled: 10, Consumed: 5}}
	// Disabled and inactive with a paid license: both rules fire, and both
	// rows survive because dedup keys on (reason, UPN).
	users := []UserRecord{{ID: "b", UserPrincipalName: "b@contoso.com", AccountEnabled: false, LicenseSkuIDs: []string{"sku-e3"}}}

	res, err := testEngine(t).Run(skus, users, nil)
	require.NoError(t, err)

	require.Len(t, res.Actionable, 2)
	assert.Equal(t, ReasonDisabledLicensed, res.Actionable[0].Reason)
	assert.Equal(t, ReasonLicensedInactive, res.Actionable[1].Reason)
}

func TestDedupeActionable(t *testing.T) {
	u := MergedUser{UserPrincipalName: "dup@contoso.com"}
	entries := []ActionableEntry{
		{Reason: ReasonLicensedInactive, MergedUser: u},
		{Reason: ReasonLicensedInactive, MergedUser: u},
		{Reason: ReasonDisabledLicensed, MergedUser: u},
	}

	out := dedupeActionable(entries)
	require.Len(t, out, 2)
	assert.Equal(t, ReasonDisabledLicensed, out[0].Reason)
	assert.Equal(t, ReasonLicensedInactive, out[1].Reason)
}

func TestLicenseStringSortedAndDeduped(t *testing.T) {
	skus := []SkuRecord{
		{SkuID: "sku-x", PartNumber: "B_SKU", Enabled: 5, Consumed: 1},
		{SkuID: "sku-y", PartNumber: "A_SKU", Enabled: 5, Consumed: 1},
	}
	users := []UserRecord{{
		ID:                "u1",
		UserPrincipalName: "alice@contoso.com",
		AccountEnabled:    true,
		LicenseSkuIDs:     []string{"sku-x", "sku-y", "sku-x"},
	}}

	res, err := testEngine(t).Run(skus, users, nil)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "A_SKU;B_SKU", res.Users[0].LicenseString())
}

func TestUnresolvedSkuIDPassesThrough(t *testing.T) {
	users := []UserRecord{{
		ID:                "u1",
		UserPrincipalName: "alice@contoso.com",
		AccountEnabled:    true,
		LicenseSkuIDs:     []string{"0000-unknown"},
	}}

	res, err := testEngine(t).Run(nil, users, nil)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "0000-unknown", res.Users[0].LicenseString())
	assert.True(t, res.Users[0].HasLicense)
	assert.False(t, res.Users[0].HasPaidLicense, "unknown part numbers cost zero")
}

func TestDuplicateActivityRowsLastWins(t *testing.T) {
	skus := []SkuRecord{{SkuID: "sku-1", PartNumber: "ENTERPRISEPACK", Enabled: 5, Consumed: 1}}
	users := []UserRecord{{ID: "u1", UserPrincipalName: "Alice@Contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}}}
	activity := []ActivityRecord{
		{UPNLower: "alice@contoso.com", LastActivityRaw: "2025-01-01"},
		{UPNLower: "alice@contoso.com", LastActivityRaw: "2025-07-14"},
	}

	res, err := testEngine(t).Run(skus, users, activity)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.False(t, res.Users[0].Inactive, "the last activity row in source order wins the join")
}

func TestUtilizationPerSku(t *testing.T) {
	skus := []SkuRecord{
		{SkuID: "sku-1", PartNumber: "ENTERPRISEPACK", Enabled: 30, Consumed: 3},
		{SkuID: "sku-2", PartNumber: "POWER_BI_PRO", Enabled: 5, Consumed: 1},
	}
	users := []UserRecord{
		{ID: "u1", UserPrincipalName: "a@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1", "sku-2"}},
		{ID: "u2", UserPrincipalName: "b@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}},
		{ID: "u3", UserPrincipalName: "c@contoso.com", AccountEnabled: true, LicenseSkuIDs: []string{"sku-1"}},
	}
	activity := []ActivityRecord{
		{UPNLower: "a@contoso.com", LastActivityRaw: "2025-07-14"},
	}

	res, err := testEngine(t).Run(skus, users, activity)
	require.NoError(t, err)

	require.Len(t, res.Utilization, 2)
	e3 := res.Utilization[0]
	assert.Equal(t, "ENTERPRISEPACK", e3.PartNumber)
	assert.Equal(t, 3, e3.LicensedUsers)
	assert.Equal(t, 1, e3.ActiveUsers)
	assert.Equal(t, 33.33, e3.UtilizationPct)

	pbi := res.Utilization[1]
	assert.Equal(t, "POWER_BI_PRO", pbi.PartNumber)
	assert.Equal(t, 1, pbi.LicensedUsers)
	assert.Equal(t, 1, pbi.ActiveUsers)
	assert.Equal(t, 100.0, pbi.UtilizationPct)
}

func TestSkuSummaryFilter(t *testing.T) {
	skus := []SkuRecord{
		{SkuID: "s1", PartNumber: "ENTERPRISEPACK", Enabled: 25, Consumed: 20},    // kept
		{SkuID: "s2", PartNumber: "POWER_BI_PRO", Enabled: 100, Consumed: 10},     // bulk quantity
		{SkuID: "s3", PartNumber: "FLOW_FREE", Enabled: 10, Consumed: 5},          // zero cost
		{SkuID: "s4", PartNumber: "EXCHANGEENTERPRISE", Enabled: 0, Consumed: 0},  // nothing purchased
		{SkuID: "s5", PartNumber: "POWER_BI_PRO", Enabled: 5, Consumed: 0},        // zero est cost
	}

	res, err := testEngine(t).Run(skus, nil, nil)
	require.NoError(t, err)

	require.Len(t, res.SkuSummary, 1)
	row := res.SkuSummary[0]
	assert.Equal(t, "ENTERPRISEPACK", row.PartNumber)
	assert.Equal(t, 5, row.Remaining())
	assert.Equal(t, "720", row.EstMonthlyCost.String())
}

func TestRemainingNeverNegative(t *testing.T) {
	sku := SkuRecord{Enabled: 5, Consumed: 7}
	assert.Equal(t, 0, sku.Remaining())
}

func TestIsBulkQuantity(t *testing.T) {
	assert.True(t, isBulkQuantity(100))
	assert.True(t, isBulkQuantity(5000))
	assert.False(t, isBulkQuantity(25))
	assert.False(t, isBulkQuantity(101))
}

func TestRunMissingPartNumber(t *testing.T) {
	_, err := testEngine(t).Run([]SkuRecord{{SkuID: "sku-1"}}, nil, nil)
	assert.Error(t, err)
}

func TestCreatedDateConvertedToEastern(t *testing.T) {
	// 2025-07-15 01:30 UTC is still 2025-07-14 in US Eastern.
	created := time.Date(2025, 7, 15, 1, 30, 0, 0, time.UTC)
	users := []UserRecord{{ID: "u1", UserPrincipalName: "a@contoso.com", AccountEnabled: true, Created: &created}}

	res, err := testEngine(t).Run(nil, users, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Users[0].Created)
	assert.Equal(t, "2025-07-14", res.Users[0].Created.Format("2006-01-02"))
}
