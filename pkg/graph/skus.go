package graph

import (
	"context"
	"fmt"

	"github.com/mvas-it/m365ops/pkg/report"
)

// ListSubscribedSkus returns the tenant's subscription snapshot. A SKU
// without a part number is a hard error: cost and utilization aggregation
// key on the part number, so silently skipping would mis-report spend.
// Missing unit counts default to zero.
func (c *Client) ListSubscribedSkus(ctx context.Context) ([]report.SkuRecord, error) {
	resp, err := c.sdk.SubscribedSkus().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribed SKUs: %w", err)
	}

	var skus []report.SkuRecord
	for _, sku := range resp.GetValue() {
		id := ""
		if v := sku.GetSkuId(); v != nil {
			id = v.String()
		}

		part := stringValue(sku.GetSkuPartNumber())
		if part == "" {
			return nil, fmt.Errorf("subscribed SKU %q has no skuPartNumber", id)
		}

		record := report.SkuRecord{
			SkuID:      id,
			PartNumber: part,
			Consumed:   int32Value(sku.GetConsumedUnits()),
		}
		if prepaid := sku.GetPrepaidUnits(); prepaid != nil {
			record.Enabled = int32Value(prepaid.GetEnabled())
			record.Warning = int32Value(prepaid.GetWarning())
			record.Suspended = int32Value(prepaid.GetSuspended())
		}
		skus = append(skus, record)
	}
	return skus, nil
}
