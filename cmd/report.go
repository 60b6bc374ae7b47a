package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvas-it/m365ops/internal/logs"
	"github.com/mvas-it/m365ops/internal/message"
	"github.com/mvas-it/m365ops/pkg/graph"
	"github.com/mvas-it/m365ops/pkg/notify"
	"github.com/mvas-it/m365ops/pkg/outputters"
	"github.com/mvas-it/m365ops/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reporting jobs",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var licenseHealthCmd = &cobra.Command{
	Use:   "license-health",
	Short: "Build the monthly license utilization workbook and email it",
	Long: `Pulls subscribed SKUs, all users and the Office 365 active-user-detail
report from Microsoft Graph, computes per-SKU utilization and cost along
with a per-user actionable review list, writes a four-sheet workbook and
emails the overview with the workbook attached.`,
	RunE: runLicenseHealth,
}

func init() {
	licenseHealthCmd.Flags().String("outfile", "", "workbook output path (default from config)")
	licenseHealthCmd.Flags().Int("period-days", 0, "activity window in days (default from config)")
	licenseHealthCmd.Flags().Bool("skip-email", false, "write the workbook but do not send email")
	reportCmd.AddCommand(licenseHealthCmd)
	rootCmd.AddCommand(reportCmd)
}

func runLicenseHealth(cmd *cobra.Command, args []string) error {
	logger := logs.ConsoleLogger()
	audit, err := logs.FileLogger()
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outfile, _ := cmd.Flags().GetString("outfile"); outfile != "" {
		cfg.OutFile = outfile
	}
	if periodDays, _ := cmd.Flags().GetInt("period-days"); periodDays > 0 {
		cfg.PeriodDays = periodDays
	}
	skipEmail, _ := cmd.Flags().GetBool("skip-email")

	if err := cfg.ValidateGraph(); err != nil {
		return err
	}
	if !skipEmail {
		if err := cfg.ValidateMail(); err != nil {
			return err
		}
	}

	message.Banner()
	ctx := cmd.Context()

	client, err := graph.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	skus, err := client.ListSubscribedSkus(ctx)
	if err != nil {
		return err
	}
	logger.Info("fetched subscribed SKUs", "count", len(skus))

	users, err := client.ListUsers(ctx)
	if err != nil {
		return err
	}
	logger.Info("fetched users", "count", len(users))

	activityCSV, err := client.ActiveUserDetail(ctx, cfg.PeriodDays)
	if err != nil {
		return err
	}
	activity, err := report.ParseActivityCSV(bytes.NewReader(activityCSV))
	if err != nil {
		return err
	}
	logger.Info("normalized activity rows", "count", len(activity))

	engine, err := report.NewEngine(cfg.UnitCosts, cfg.PeriodDays)
	if err != nil {
		return err
	}
	res, err := engine.Run(skus, users, activity)
	if err != nil {
		return err
	}
	logger.Info("report computed",
		"licensed_users", res.TotalLicensedUsers,
		"active_users", res.TotalActiveUsers,
		"utilization_pct", res.OverallUtilizationPct,
		"actionable", len(res.Actionable))

	sheets := report.Sheets(res)
	if err := outputters.WriteWorkbook(cfg.OutFile, sheets); err != nil {
		return err
	}
	message.Success("wrote workbook %s", cfg.OutFile)
	audit.Info("license-health run",
		"outfile", cfg.OutFile,
		"licensed_users", res.TotalLicensedUsers,
		"active_users", res.TotalActiveUsers,
		"actionable", len(res.Actionable),
		"emailed", !skipEmail)

	if skipEmail {
		message.Info("email delivery skipped")
		return nil
	}

	mailer := notify.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	}
	msg := notify.Message{
		Recipients:     cfg.Recipients,
		Subject:        reportSubject(time.Now()),
		HTMLBody:       emailBody(outputters.HTMLTable(sheets[0])),
		AttachmentPath: cfg.OutFile,
	}
	if err := mailer.Send(msg); err != nil {
		// The workbook stays on disk so the run is not silently lossy.
		return err
	}
	message.Success("report emailed to %d recipient(s)", len(cfg.Recipients))
	return nil
}

func reportSubject(now time.Time) string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return fmt.Sprintf("Microsoft License Report - %s EST", now.In(loc).Format("01-02-2006 03:04PM"))
}

func emailBody(overviewHTML string) string {
	return `<html><body>
<p>Hello,</p>
<p>Here is the overview for this months Microsoft Licenses report:</p>
` + overviewHTML + `
<p>The detailed tabs are in the attached file.</p>
</body></html>`
}
