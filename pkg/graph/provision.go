package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
)

const graphUsersBase = "https://graph.microsoft.com/v1.0/users/"

// NewHire carries the fields of a directory account to create. The
// temporary password must be changed at first sign-in.
type NewHire struct {
	DisplayName       string
	MailNickname      string
	UserPrincipalName string
	Password          string
	JobTitle          string
	Department        string
	OfficeLocation    string
}

// CreateUser creates an enabled directory account and returns its object id.
func (c *Client) CreateUser(ctx context.Context, hire NewHire) (string, error) {
	enabled := true
	forceChange := true

	profile := models.NewPasswordProfile()
	profile.SetForceChangePasswordNextSignIn(&forceChange)
	profile.SetPassword(&hire.Password)

	body := models.NewUser()
	body.SetAccountEnabled(&enabled)
	body.SetDisplayName(&hire.DisplayName)
	body.SetMailNickname(&hire.MailNickname)
	body.SetUserPrincipalName(&hire.UserPrincipalName)
	body.SetPasswordProfile(profile)
	// Graph rejects empty strings for the optional profile fields.
	if hire.JobTitle != "" {
		body.SetJobTitle(&hire.JobTitle)
	}
	if hire.Department != "" {
		body.SetDepartment(&hire.Department)
	}
	if hire.OfficeLocation != "" {
		body.SetOfficeLocation(&hire.OfficeLocation)
	}

	created, err := c.sdk.Users().Post(ctx, body, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create user %s: %w", hire.UserPrincipalName, err)
	}

	id := stringValue(created.GetId())
	if id == "" {
		return "", fmt.Errorf("user %s was created without an id", hire.UserPrincipalName)
	}
	return id, nil
}

// AssignManager resolves the manager by UPN/email and sets the manager
// reference on the given account.
func (c *Client) AssignManager(ctx context.Context, userID, managerEmail string) error {
	manager, err := c.sdk.Users().ByUserId(managerEmail).Get(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to look up manager %s: %w", managerEmail, err)
	}

	odataID := graphUsersBase + stringValue(manager.GetId())
	ref := models.NewReferenceUpdate()
	ref.SetOdataId(&odataID)

	if err := c.sdk.Users().ByUserId(userID).Manager().Ref().Put(ctx, ref, nil); err != nil {
		return fmt.Errorf("failed to assign manager %s: %w", managerEmail, err)
	}
	return nil
}

// AddToGroups adds the account to each group in order; the first failure
// aborts the remainder. Group ids must be object GUIDs, not display names.
func (c *Client) AddToGroups(ctx context.Context, userID string, groupIDs []string) error {
	for _, groupID := range groupIDs {
		if _, err := uuid.Parse(groupID); err != nil {
			return fmt.Errorf("invalid group id %q: %w", groupID, err)
		}
	}

	odataID := graphUsersBase + userID
	for _, groupID := range groupIDs {
		ref := models.NewReferenceCreate()
		ref.SetOdataId(&odataID)

		if err := c.sdk.Groups().ByGroupId(groupID).Members().Ref().Post(ctx, ref, nil); err != nil {
			return fmt.Errorf("failed to add user to group %s: %w", groupID, err)
		}
	}
	return nil
}
