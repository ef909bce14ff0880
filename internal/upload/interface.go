package upload

import "context"

// Uploader runs tournament file upload batches.
type Uploader interface {
	Run(ctx context.Context, req Request) (*BatchResult, error)
}
