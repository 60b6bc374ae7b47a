package graph

import (
	"context"
	"fmt"

	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"

	"github.com/mvas-it/m365ops/pkg/report"
)

// ListUsers returns every directory account with the fields the report
// needs, following pagination until exhausted. The result is a complete
// in-memory snapshot; processing never starts on a partial listing.
func (c *Client) ListUsers(ctx context.Context) ([]report.UserRecord, error) {
	requestConfig := &users.UsersRequestBuilderGetRequestConfiguration{
		QueryParameters: &users.UsersRequestBuilderGetQueryParameters{
			Select: []string{
				"id", "displayName", "userPrincipalName", "mail",
				"accountEnabled", "userType", "createdDateTime",
				"assignedLicenses",
			},
			Top: int32Ptr(999), // Max page size
		},
	}

	result, err := c.sdk.Users().Get(ctx, requestConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Userable](result, c.sdk.GetAdapter(), models.CreateUserCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, fmt.Errorf("failed to create page iterator: %w", err)
	}

	var records []report.UserRecord
	err = pageIterator.Iterate(ctx, func(user models.Userable) bool {
		records = append(records, convertUser(user))
		return true // Continue iteration
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return records, nil
}

func convertUser(user models.Userable) report.UserRecord {
	var skuIDs []string
	for _, lic := range user.GetAssignedLicenses() {
		if id := lic.GetSkuId(); id != nil {
			skuIDs = append(skuIDs, id.String())
		}
	}

	return report.UserRecord{
		ID:                stringValue(user.GetId()),
		DisplayName:       stringValue(user.GetDisplayName()),
		UserPrincipalName: stringValue(user.GetUserPrincipalName()),
		Mail:              stringValue(user.GetMail()),
		AccountEnabled:    boolValue(user.GetAccountEnabled()),
		UserType:          stringValue(user.GetUserType()),
		Created:           user.GetCreatedDateTime(),
		LicenseSkuIDs:     skuIDs,
	}
}
