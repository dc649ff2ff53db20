// Package janitor reclaims uploaded images that no record references.
// Uploads and record writes are independent calls, so an image whose form
// was abandoned stays in the blob store until a pass removes it.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeomhps/formation-admin/internal/images"
)

// References lists every image URL currently in use.
type References interface {
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

type Janitor struct {
	Refs   References
	Images images.Store
	// Grace protects fresh uploads whose record has not been saved yet.
	Grace  time.Duration
	Logger *slog.Logger
	Now    func() time.Time
}

// RunOnce deletes orphaned images older than Grace and returns how many
// were removed.
func (j Janitor) RunOnce(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	log := j.Logger
	if log == nil {
		log = slog.Default()
	}

	// Load objects before references: an image referenced after this point
	// was uploaded after the listing or is still inside the grace window.
	objs, err := j.Images.List(ctx)
	if err != nil {
		return 0, err
	}
	refs, err := j.Refs.ReferencedImages(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(refs))
	for u := range refs {
		if id, ok := images.IDFromURL(u); ok {
			inUse[id] = struct{}{}
		}
	}

	cutoff := now().Add(-j.Grace)
	removed := 0
	for _, o := range objs {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if _, ok := inUse[o.ID]; ok || o.UploadedAt.After(cutoff) {
			continue
		}
		if err := j.Images.Delete(ctx, o.ID); err != nil {
			log.Warn("delete orphan image", "id", o.ID, "err", err)
			continue
		}
		log.Debug("deleted orphan image", "id", o.ID, "filename", o.Filename)
		removed++
	}
	return removed, nil
}
