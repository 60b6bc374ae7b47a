package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mvas-it/m365ops/pkg/report"
)

// Defaults for the report run. The unit-cost table mirrors the tenant's
// negotiated per-seat pricing and can be overridden wholesale from the
// config file.
const (
	DefaultOutFile    = "m365_license_health.xlsx"
	DefaultPeriodDays = 30
	DefaultStaleDays  = 45
	DefaultSMTPHost   = "smtp.office365.com"
	DefaultSMTPPort   = 587
)

var defaultUnitCosts = map[string]float64{
	"ATP_ENTERPRISE":                   3.00,
	"Clipchamp_Standard":               7.00,
	"DYN365_BUSCENTRAL_ESSENTIAL":      70.00,
	"ENTERPRISEPACK":                   36.00,
	"EXCHANGEDESKLESS":                 4.00,
	"EXCHANGEENTERPRISE":               8.00,
	"EXCHANGESTANDARD":                 4.00,
	"MCOMEETADV":                       2.00,
	"MCOTEAMS_ESSENTIALS":              4.00,
	"Microsoft_365_Copilot":            30.00,
	"Microsoft_365_E3_(no_Teams)":      33.00,
	"Microsoft_Teams_Enterprise_New":   7.00,
	"Microsoft_Teams_Exploratory_Dept": 0.00,
	"Microsoft_Teams_Premium":          7.00,
	"Microsoft_Teams_Rooms_Basic":      0.00,
	"Microsoft_Teams_Rooms_Pro":        40.00,
	"PBI_PREMIUM_PER_USER":             20.00,
	"POWERAPPS_DEV":                    10.00,
	"POWER_BI_PRO":                     10.00,
	"PROJECTPROFESSIONAL":              30.00,
	"SPE_E3":                           36.00,
	"SPE_E5":                           57.00,
	"THREAT_INTELLIGENCE":              2.00,

	"Teams_Phone_with_domestic_and_international_calling": 15.00,
	"Teams_Premium_(for_Departments)":                     7.00,
}

// Config is the full environment surface of both workflows. Secrets come
// from env vars; table-like settings (unit costs, onboarding groups) come
// from the config file with code defaults.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	Recipients   []string

	OutFile    string
	PeriodDays int
	StaleDays  int
	UnitCosts  report.CostTable

	EmailDomain        string
	OnboardingGroupIDs []string
}

// SetDefaults seeds viper with the report defaults. Called from the root
// command's config initialization.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("outfile", DefaultOutFile)
	v.SetDefault("period_days", DefaultPeriodDays)
	v.SetDefault("stale_days", DefaultStaleDays)
	v.SetDefault("smtp_host", DefaultSMTPHost)
	v.SetDefault("smtp_port", DefaultSMTPPort)
}

// DefaultUnitCosts returns the built-in per-seat cost table.
func DefaultUnitCosts() report.CostTable {
	costs := make(report.CostTable, len(defaultUnitCosts))
	for part, cost := range defaultUnitCosts {
		costs[part] = decimal.NewFromFloat(cost)
	}
	return costs
}

// Load resolves the configuration from the given viper instance. Env names
// follow the automation account's conventions: AZURE_TENANT_ID,
// AZURE_CLIENT_ID, AZURE_CLIENT_SECRET, OFFICE_365_USERNAME,
// OFFICE_365_PASSWORD, EMAIL_RECIPIENTS (comma-separated).
func Load(v *viper.Viper) (*Config, error) {
	costs, err := unitCosts(v.Get("unit_costs"))
	if err != nil {
		return nil, err
	}

	return &Config{
		TenantID:     v.GetString("azure_tenant_id"),
		ClientID:     v.GetString("azure_client_id"),
		ClientSecret: v.GetString("azure_client_secret"),

		SMTPHost:     v.GetString("smtp_host"),
		SMTPPort:     v.GetInt("smtp_port"),
		SMTPUsername: v.GetString("office_365_username"),
		SMTPPassword: v.GetString("office_365_password"),
		Recipients:   splitList(v.GetString("email_recipients")),

		OutFile:    v.GetString("outfile"),
		PeriodDays: v.GetInt("period_days"),
		StaleDays:  v.GetInt("stale_days"),
		UnitCosts:  costs,

		EmailDomain:        v.GetString("email_domain"),
		OnboardingGroupIDs: v.GetStringSlice("onboarding_group_ids"),
	}, nil
}

// ValidateGraph checks the fields every Graph-backed command needs.
func (c *Config) ValidateGraph() error {
	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "AZURE_TENANT_ID")
	}
	if c.ClientID == "" {
		missing = append(missing, "AZURE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "AZURE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateMail checks the fields email delivery needs.
func (c *Config) ValidateMail() error {
	var missing []string
	if c.SMTPUsername == "" {
		missing = append(missing, "OFFICE_365_USERNAME")
	}
	if c.SMTPPassword == "" {
		missing = append(missing, "OFFICE_365_PASSWORD")
	}
	if len(c.Recipients) == 0 {
		missing = append(missing, "EMAIL_RECIPIENTS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// unitCosts resolves the cost table. A config-file override is a list of
// {sku, cost} entries rather than a map: viper lower-cases map keys, which
// would corrupt case-sensitive SKU part numbers.
func unitCosts(raw any) (report.CostTable, error) {
	if raw == nil {
		return DefaultUnitCosts(), nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unit_costs must be a list of {sku, cost} entries, got %T", raw)
	}

	costs := make(report.CostTable, len(entries))
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unit_costs[%d] must be a {sku, cost} entry, got %T", i, item)
		}
		part, _ := entry["sku"].(string)
		if part == "" {
			return nil, fmt.Errorf("unit_costs[%d] is missing its sku", i)
		}
		d, err := toDecimal(entry["cost"])
		if err != nil {
			return nil, fmt.Errorf("invalid unit cost for %s: %w", part, err)
		}
		costs[part] = d
	}
	return costs, nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value %v (%T)", value, value)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
