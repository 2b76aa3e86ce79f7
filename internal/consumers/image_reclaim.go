package consumers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"catalog/domain"
	"catalog/pkg/events"
)

type imageRefs interface {
	ImageInUse(ctx context.Context, uri string) (bool, error)
}

type imageDeleter interface {
	Delete(ctx context.Context, uri string) error
}

// ImageReclaimHandler deletes images that item.image.replaced and
// item.image.orphaned report as unreferenced. An image still referenced by
// any item is left alone.
type ImageReclaimHandler struct {
	items   imageRefs
	images  imageDeleter
	enabled bool
}

func NewImageReclaimHandler(items imageRefs, images imageDeleter, enabled bool) *ImageReclaimHandler {
	return &ImageReclaimHandler{items: items, images: images, enabled: enabled}
}

func (h *ImageReclaimHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	var payload events.ImagePayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("malformed payload: %v: %w", err, events.ErrPermanent)
	}

	var candidate string
	switch event.Event {
	case events.ItemImageReplacedEvent:
		candidate = payload.PreviousURI
	case events.ItemImageOrphanedEvent:
		candidate = payload.ImageURI
	default:
		zap.L().Warn("Unknown image event type", zap.String("event", event.Event))
		return nil
	}
	if candidate == "" {
		return fmt.Errorf("malformed payload - image uri missing: %w", events.ErrPermanent)
	}

	log := zap.L().With(
		zap.String("event", event.Event),
		zap.Int64("itemId", payload.ItemID),
		zap.String("imageUri", candidate),
		zap.String("traceId", event.TraceID),
	)

	if !h.enabled {
		log.Info("Image reclaim disabled, keeping image")
		return nil
	}

	inUse, err := h.items.ImageInUse(ctx, candidate)
	if err != nil {
		return domain.Unavailable("entity store", err)
	}
	if inUse {
		log.Info("Image still referenced, keeping it")
		return nil
	}

	if err := h.images.Delete(ctx, candidate); err != nil {
		if errors.Is(err, domain.ErrUnmanagedImage) {
			log.Warn("Image is not managed by the image store, nothing to reclaim", zap.Error(err))
			return nil
		}
		return domain.Unavailable("image store", err)
	}
	log.Info("Reclaimed unreferenced image")
	return nil
}
