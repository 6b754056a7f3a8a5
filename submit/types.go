// Package submit turns a finished answer bag into a persisted trip listing.
package submit

import (
	"context"
	"errors"
	"time"

	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/types"
)

type Phase string

const (
	PhaseEnrich  Phase = "enrich"
	PhaseRender  Phase = "render"
	PhasePersist Phase = "persist"
)

// SubmissionFailure stops the pipeline. The wizard that produced the
// answers is left as it was so the user can retry.
type SubmissionFailure struct {
	Phase Phase
	Err   error
}

func (e *SubmissionFailure) Error() string {
	return "submission failed during " + string(e.Phase) + ": " + e.Err.Error()
}

func (e *SubmissionFailure) Unwrap() error {
	return e.Err
}

type Status string

const (
	StatusProposed Status = "proposed"
	StatusAssigned Status = "assigned"
	StatusSold     Status = "sold"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case "":
		return StatusProposed, true
	case StatusProposed, StatusAssigned, StatusSold:
		return Status(s), true
	}
	return "", false
}

var ErrTripNotFound = errors.New("trip not found")

type HotelInfo struct {
	Rating           float64 `json:"rating,omitempty"`
	UserRatingsTotal int     `json:"user_ratings_total,omitempty"`
	Website          string  `json:"website,omitempty"`
	Phone            string  `json:"phone,omitempty"`
}

// Enrichment is what the enrich phase adds on top of the answers.
type Enrichment struct {
	Photos      []string       `json:"photos"`
	Videos      []enrich.Video `json:"videos"`
	Hotel       *HotelInfo     `json:"hotel_info,omitempty"`
	B2BCost     float64        `json:"b2b_cost"`
	PublicPrice float64        `json:"public_price"`
	Margin      int            `json:"margin"`
	Savings     int            `json:"savings"`
}

type Preview struct {
	Answers    types.Answers `json:"form_data"`
	Enrichment Enrichment    `json:"enriched_data"`
	DayTrip    bool          `json:"day_trip"`
	HTML       string        `json:"html"`
}

type Trip struct {
	ID          string        `json:"id"`
	Destination string        `json:"destination"`
	HotelName   string        `json:"hotel_name"`
	Price       int           `json:"price"`
	Status      Status        `json:"status"`
	FormData    types.Answers `json:"form_data"`
	Enrichment  Enrichment    `json:"enriched_data"`
	PreviewHTML string        `json:"preview_html"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Enricher interface {
	Enrich(ctx context.Context, answers types.Answers) (*Enrichment, error)
}

type PreviewRenderer interface {
	RenderPreview(ctx context.Context, answers types.Answers, enrichment Enrichment) (string, error)
}

type TripStore interface {
	Save(ctx context.Context, trip *Trip) error
	Get(ctx context.Context, id string) (*Trip, error)
	List(ctx context.Context, status Status, limit int) ([]*Trip, error)
}
