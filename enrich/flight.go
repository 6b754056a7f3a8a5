package enrich

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Flight collapses concurrent identical lookups into one remote call.
type Flight struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers. A caller whose context
// ends stops waiting; the shared call keeps running for the others.
func Do[T any](ctx context.Context, f *Flight, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	ch := f.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// SharedPlaces wraps a PlaceLookup so that identical in-flight queries share
// one request.
type SharedPlaces struct {
	PlaceLookup
	flight Flight
}

func NewSharedPlaces(lookup PlaceLookup) *SharedPlaces {
	return &SharedPlaces{PlaceLookup: lookup}
}

func (c *SharedPlaces) Autocomplete(ctx context.Context, query string) ([]Prediction, error) {
	return Do(ctx, &c.flight, "autocomplete:"+query, func(ctx context.Context) ([]Prediction, error) {
		return c.PlaceLookup.Autocomplete(ctx, query)
	})
}

func (c *SharedPlaces) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	return Do(ctx, &c.flight, "details:"+placeID, func(ctx context.Context) (*PlaceDetails, error) {
		return c.PlaceLookup.Details(ctx, placeID)
	})
}
