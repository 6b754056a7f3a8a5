package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"

	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/types"
)

const (
	DefaultB2BRatio    = 0.7
	DefaultPublicRatio = 1.15
	DefaultMaxPhotos   = 6
	DefaultMaxVideos   = 2
	photoMaxWidth      = 1200
	placeholderURL     = "https://via.placeholder.com/800x600?text="
)

// PricingEnricher adds hotel photos, destination videos and the agency
// margin figures. The cost price is estimated as a ratio of the selling price
// and the public price as another ratio above it.
type PricingEnricher struct {
	places      enrich.PlaceLookup
	videos      enrich.VideoLookup
	b2bRatio    float64
	publicRatio float64
	maxPhotos   int
	maxVideos   int
}

type EnricherOption func(*PricingEnricher)

func WithRatios(b2b, public float64) EnricherOption {
	return func(e *PricingEnricher) {
		if b2b > 0 {
			e.b2bRatio = b2b
		}
		if public > 0 {
			e.publicRatio = public
		}
	}
}

func WithMaxPhotos(n int) EnricherOption {
	return func(e *PricingEnricher) {
		if n > 0 {
			e.maxPhotos = n
		}
	}
}

// WithVideos adds up to limit destination videos to every listing. A failed
// search leaves the listing without videos.
func WithVideos(videos enrich.VideoLookup, limit int) EnricherOption {
	return func(e *PricingEnricher) {
		e.videos = videos
		if limit > 0 {
			e.maxVideos = limit
		}
	}
}

// NewPricingEnricher accepts a nil places lookup; photos then fall back to a
// placeholder.
func NewPricingEnricher(places enrich.PlaceLookup, opts ...EnricherOption) *PricingEnricher {
	e := &PricingEnricher{
		places:      places,
		b2bRatio:    DefaultB2BRatio,
		publicRatio: DefaultPublicRatio,
		maxPhotos:   DefaultMaxPhotos,
		maxVideos:   DefaultMaxVideos,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *PricingEnricher) Enrich(ctx context.Context, answers types.Answers) (*Enrichment, error) {
	out := &Enrichment{}

	if placeID := answers.String(types.FieldHotelPlaceID); placeID != "" && e.places != nil {
		details, err := e.places.Details(ctx, placeID)
		switch {
		case errors.Is(err, enrich.ErrPlacesDisabled):
		case err != nil:
			return nil, fmt.Errorf("hotel details: %w", err)
		default:
			for _, ref := range details.PhotoRefs {
				if len(out.Photos) == e.maxPhotos {
					break
				}
				out.Photos = append(out.Photos, e.places.PhotoURL(ref, photoMaxWidth))
			}
			out.Hotel = &HotelInfo{
				Rating:           details.Rating,
				UserRatingsTotal: details.UserRatingsTotal,
				Website:          details.Website,
				Phone:            details.Phone,
			}
		}
	}
	if len(out.Photos) == 0 {
		label := answers.String(types.FieldDestination)
		if label == "" {
			label = "Trip"
		}
		out.Photos = []string{placeholderURL + url.QueryEscape(label)}
	}

	if destination := answers.String(types.FieldDestination); destination != "" && e.videos != nil {
		videos, err := e.videos.SearchVideos(ctx, destination, e.maxVideos)
		if err != nil {
			slog.Debug("Video search failed, listing goes without videos", "destination", destination, "error", err)
		}
		out.Videos = videos
	}
	if out.Videos == nil {
		out.Videos = []enrich.Video{}
	}

	price, _ := answers.Float(types.FieldPrice)
	out.B2BCost = price * e.b2bRatio
	out.PublicPrice = price * e.publicRatio
	out.Margin = truncate(price - out.B2BCost)
	out.Savings = truncate(out.PublicPrice - price)
	return out, nil
}

// truncate drops the fractional part, absorbing float noise such as
// 299.99999999999994.
func truncate(v float64) int {
	return int(math.Trunc(v + math.Copysign(1e-6, v)))
}
