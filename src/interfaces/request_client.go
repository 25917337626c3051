package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IRequestClient performs upstream JSON requests with timeout, retry and
// error classification.
// -----------------------------------------------------------------------------

type IRequestClient interface {

	// Request decodes the response body into out or returns a classified
	// *helpers.ApiError.
	// The stores need the error to record it, so they call Request rather
	// than RequestClient.FetchOrNull.
	Request(ctx context.Context, url string, opts *models.MRequestOptions, out any) error
}
