package port

import "context"

// MediaUploaderPort uploads a batch of asset references for one property and
// returns the remote file ids in input order. Entries that fail at any step
// are omitted from the result; the batch itself never fails.
type MediaUploaderPort interface {
	UploadAll(ctx context.Context, references []string) []int64
}
