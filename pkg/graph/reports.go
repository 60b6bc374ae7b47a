package graph

import (
	"context"
	"fmt"
)

// ActiveUserDetail downloads the Office 365 active-user-detail report for
// the given period as raw CSV bytes. Normalization happens downstream in
// the report package.
func (c *Client) ActiveUserDetail(ctx context.Context, periodDays int) ([]byte, error) {
	period := fmt.Sprintf("D%d", periodDays)
	data, err := c.sdk.Reports().GetOffice365ActiveUserDetailWithPeriod(&period).Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get active user detail report: %w", err)
	}
	return data, nil
}
