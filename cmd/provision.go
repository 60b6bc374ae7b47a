package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvas-it/m365ops/internal/logs"
	"github.com/mvas-it/m365ops/internal/message"
	"github.com/mvas-it/m365ops/pkg/graph"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Account provisioning jobs",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var newHireCmd = &cobra.Command{
	Use:   "new-hire",
	Short: "Interactively onboard a new hire",
	Long: `Prompts for the new hire's details, creates the directory account with a
temporary password, assigns the manager and adds the account to the
onboarding groups from configuration.`,
	RunE: runNewHire,
}

func init() {
	provisionCmd.AddCommand(newHireCmd)
	rootCmd.AddCommand(provisionCmd)
}

func runNewHire(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateGraph(); err != nil {
		return err
	}

	message.Banner()
	message.Info("New User Onboarding")

	displayName := promptRequired("Full name (e.g., John Doe)")
	username := promptRequired("Username (e.g., johndoe)")

	domain := cfg.EmailDomain
	if domain == "" {
		domain = promptRequired("Email domain (e.g., example.com)")
	}

	password := promptRequired("Temporary password")
	managerEmail := message.Prompt("Manager's email address (blank to skip)")
	jobTitle := message.Prompt("Job title")
	department := message.Prompt("Department")
	officeLocation := message.Prompt("Office location")

	hire := graph.NewHire{
		DisplayName:       displayName,
		MailNickname:      username,
		UserPrincipalName: fmt.Sprintf("%s@%s", username, domain),
		Password:          password,
		JobTitle:          jobTitle,
		Department:        department,
		OfficeLocation:    officeLocation,
	}

	ctx := cmd.Context()
	client, err := graph.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	audit, err := logs.FileLogger()
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}

	message.Info("creating account %s", hire.UserPrincipalName)
	userID, err := client.CreateUser(ctx, hire)
	if err != nil {
		return err
	}
	message.Success("account created, id %s", message.Emphasize(userID))
	audit.Info("new hire created", "upn", hire.UserPrincipalName, "id", userID)

	// The account exists from here on; later failures are reported but must
	// not hide the created id or skip the remaining steps.
	var failed []string
	if managerEmail != "" {
		if err := client.AssignManager(ctx, userID, managerEmail); err != nil {
			message.Error("%v", err)
			failed = append(failed, "manager")
		} else {
			message.Success("manager assigned")
		}
	} else {
		message.Warning("no manager assigned")
	}

	if len(cfg.OnboardingGroupIDs) > 0 {
		if err := client.AddToGroups(ctx, userID, cfg.OnboardingGroupIDs); err != nil {
			message.Error("%v", err)
			failed = append(failed, "groups")
		} else {
			message.Success("added to %d group(s)", len(cfg.OnboardingGroupIDs))
		}
	} else {
		message.Warning("no onboarding groups configured")
	}

	if len(failed) > 0 {
		return fmt.Errorf("account %s created but these steps failed: %s", hire.UserPrincipalName, strings.Join(failed, ", "))
	}
	message.Success("onboarding complete for %s", hire.UserPrincipalName)
	return nil
}

func promptRequired(label string) string {
	for {
		if v := message.Prompt(label); v != "" {
			return v
		}
		message.Warning("a value is required")
	}
}
