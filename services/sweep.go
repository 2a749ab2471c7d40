package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"masterboxer.com/project-newsfeed/storage"
)

type AttachmentLister interface {
	List(ctx context.Context) ([]storage.BlobInfo, error)
	Delete(ctx context.Context, location string) error
}

type ReferenceSource interface {
	AttachmentLocations(ctx context.Context) (map[string]struct{}, error)
}

// SweepOrphanAttachments deletes blobs that no post references and that are
// older than grace. Younger blobs may belong to a create still in flight.
func SweepOrphanAttachments(ctx context.Context, refs ReferenceSource, blobs AttachmentLister, grace time.Duration, now time.Time) (int, error) {
	// Blobs are listed before references so that a post committed in between
	// is seen as referenced.
	listed, err := blobs.List(ctx)
	if err != nil {
		return 0, err
	}
	referenced, err := refs.AttachmentLocations(ctx)
	if err != nil {
		return 0, fmt.Errorf("load attachment references: %w", err)
	}

	cutoff := now.Add(-grace)
	removed := 0
	for _, blob := range listed {
		if _, ok := referenced[blob.Location]; ok {
			continue
		}
		if blob.ModTime.After(cutoff) {
			continue
		}
		if err := blobs.Delete(ctx, blob.Location); err != nil {
			log.Printf("[SWEEP][ERROR] %v", err)
			continue
		}
		log.Printf("[SWEEP] Removed orphan %s", blob.Location)
		removed++
	}
	return removed, nil
}
