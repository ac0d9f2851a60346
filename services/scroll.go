package services

import (
	"context"

	"vehicle-storefront/utils"
)

// DefaultScrollThreshold is the distance from the bottom of the document,
// in pixels, under which the next page is requested.
const DefaultScrollThreshold = 200

// Viewport is the scroll geometry reported by one scroll event.
type Viewport struct {
	ScrollY        float64 `json:"scrollY"`
	InnerHeight    float64 `json:"innerHeight"`
	DocumentHeight float64 `json:"documentHeight"`
}

// DistanceFromBottom is how far the bottom edge of the viewport is from the
// end of the document.
func (v Viewport) DistanceFromBottom() float64 {
	return v.DocumentHeight - (v.ScrollY + v.InnerHeight)
}

// Pager is the part of a Loader the scroll trigger drives.
type Pager interface {
	Status() (isLoading, hasMore bool)
	LoadMore(ctx context.Context) error
}

// ScrollTrigger requests the next page when a scroll event lands near the
// bottom of the document.
type ScrollTrigger struct {
	pager     Pager
	threshold float64
	logger    *utils.Logger
}

// NewScrollTrigger creates a trigger. A non-positive threshold selects
// DefaultScrollThreshold.
func NewScrollTrigger(pager Pager, thresholdPx int, logger *utils.Logger) *ScrollTrigger {
	if thresholdPx <= 0 {
		thresholdPx = DefaultScrollThreshold
	}
	return &ScrollTrigger{pager: pager, threshold: float64(thresholdPx), logger: logger}
}

// Threshold returns the trigger distance in pixels.
func (t *ScrollTrigger) Threshold() float64 { return t.threshold }

// Near reports whether vp is within the threshold of the document end.
func (t *ScrollTrigger) Near(vp Viewport) bool {
	return vp.DistanceFromBottom() < t.threshold
}

// OnScroll handles one scroll event. It returns true when LoadMore was
// invoked.
func (t *ScrollTrigger) OnScroll(ctx context.Context, vp Viewport) (bool, error) {
	if !t.Near(vp) {
		return false, nil
	}
	loading, hasMore := t.pager.Status()
	if loading || !hasMore {
		return false, nil
	}
	t.logger.Debug("[scroll] %.0fpx from bottom, loading next page", vp.DistanceFromBottom())
	return true, t.pager.LoadMore(ctx)
}
