// SPDX-License-Identifier: MPL-2.0

package zenodo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoBucket is returned when a freshly created deposition carries no
// bucket link, leaving nowhere to upload files.
var ErrNoBucket = errors.New("deposition has no bucket link")

// DepositRequest bundles the inputs of the create-upload-publish flow.
type DepositRequest struct {
	// Paths are the files to upload: local paths or http(s) URLs.
	Paths []string
	// Metadata is attached to the deposition after the uploads.
	Metadata map[string]any
	// Publish publishes the deposition once everything is in place.
	Publish bool
}

// Deposit runs the full flow: create a deposition, upload every file to
// its bucket, set the metadata, and optionally publish. Each step is a
// single API call with no retry; the first failure aborts the flow and
// leaves the draft behind for manual cleanup or a later retry by the
// user.
func (c *Client) Deposit(ctx context.Context, req DepositRequest) (*Deposition, error) {
	dep, err := c.CreateDeposition(ctx, nil)
	if err != nil {
		return nil, err
	}
	slog.Info("created deposition", "id", dep.ID)

	if len(req.Paths) > 0 && dep.Links.Bucket == "" {
		return nil, fmt.Errorf("depositing to %d: %w", dep.ID, ErrNoBucket)
	}

	for _, p := range req.Paths {
		file, err := c.UploadFile(ctx, dep.Links.Bucket, p)
		if err != nil {
			return nil, err
		}
		slog.Info("uploaded file", "name", file.Key, "size", file.Size)
	}

	if len(req.Metadata) > 0 {
		dep, err = c.UpdateMetadata(ctx, dep.ID, req.Metadata)
		if err != nil {
			return nil, err
		}
	}

	if req.Publish {
		dep, err = c.PublishDeposition(ctx, dep.ID)
		if err != nil {
			return nil, err
		}
		slog.Info("published deposition", "id", dep.ID, "doi", dep.DOI)
	}

	return dep, nil
}
