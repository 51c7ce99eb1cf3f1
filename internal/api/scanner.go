package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetScannerPage fetches one page of ranked scanner results.
func (c *Client) GetScannerPage(ctx context.Context, params ScannerParams) (*ScannerResponse, error) {
	query := url.Values{}

	if params.Chain != "" {
		query.Set("chain", params.Chain)
	}
	if params.RankBy != "" {
		query.Set("rankBy", string(params.RankBy))
	}
	if params.OrderBy != "" {
		query.Set("orderBy", string(params.OrderBy))
	}
	if params.IsNotHP {
		query.Set("isNotHP", "true")
	}
	if params.MinVol24H > 0 {
		query.Set("minVol24H", strconv.FormatFloat(params.MinVol24H, 'f', -1, 64))
	}
	if params.MinMcap > 0 {
		query.Set("minMcap", strconv.FormatFloat(params.MinMcap, 'f', -1, 64))
	}
	if params.MaxAge > 0 {
		query.Set("maxAge", strconv.FormatInt(params.MaxAge, 10))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}

	var resp ScannerResponse
	if err := c.get(ctx, "/scanner", query, &resp); err != nil {
		return nil, fmt.Errorf("get scanner page %d: %w", params.Page, err)
	}

	return &resp, nil
}
