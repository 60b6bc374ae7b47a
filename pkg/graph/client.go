// Package graph wraps the Microsoft Graph SDK behind the narrow read/write
// surface the report and provisioning workflows need. All methods exhaust
// pagination and return fully materialized collections; downstream code
// never touches the SDK.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"github.com/mvas-it/m365ops/pkg/config"
)

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// Client is an authenticated Microsoft Graph client for one tenant.
type Client struct {
	sdk *msgraphsdk.GraphServiceClient
}

// NewClient exchanges the configured client credentials for a Graph client
// and verifies access by reading the tenant's organization object, so auth
// failures surface before any data is fetched.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	cred, err := credential(cfg)
	if err != nil {
		return nil, err
	}

	sdk, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, graphScopes)
	if err != nil {
		return nil, fmt.Errorf("failed to create Graph client: %w", err)
	}

	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	org, err := sdk.Organization().Get(testCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate to Graph API: %w", err)
	}

	if value := org.GetValue(); len(value) > 0 {
		slog.Info("authenticated to tenant",
			"tenant_id", stringValue(value[0].GetId()),
			"tenant_name", stringValue(value[0].GetDisplayName()))
	}

	return &Client{sdk: sdk}, nil
}

// credential builds the app-only client-secret credential the automation
// account runs under.
func credential(cfg *config.Config) (azcore.TokenCredential, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}
	return cred, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolValue(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

func int32Value(i *int32) int {
	if i == nil {
		return 0
	}
	return int(*i)
}

func int32Ptr(i int32) *int32 {
	return &i
}
