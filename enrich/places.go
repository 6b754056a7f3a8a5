package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

const (
	DefaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"
	detailFields         = "place_id,name,formatted_address,geometry,photos,rating,user_ratings_total,website,formatted_phone_number"
)

var (
	ErrPlacesDisabled = errors.New("places lookup is not configured")
	ErrPlaceNotFound  = errors.New("place not found")
)

type Prediction struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	PrimaryText   string `json:"primary_text"`
	SecondaryText string `json:"secondary_text"`
}

type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	Website          string   `json:"website,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	PhotoRefs        []string `json:"photo_refs,omitempty"`
}

type PlaceLookup interface {
	Autocomplete(ctx context.Context, query string) ([]Prediction, error)
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
	PhotoURL(ref string, maxWidth int) string
}

type PlacesOption func(*PlacesClient)

func WithHTTPClient(client *http.Client) PlacesOption {
	return func(c *PlacesClient) { c.http = client }
}

func WithBaseURL(baseURL string) PlacesOption {
	return func(c *PlacesClient) { c.baseURL = baseURL }
}

func WithLanguage(lang string) PlacesOption {
	return func(c *PlacesClient) { c.language = lang }
}

// PlacesClient talks to the Google Places web service. Only lodging and
// locality lookups are used by the wizard.
type PlacesClient struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	language string
}

var _ PlaceLookup = (*PlacesClient)(nil)

func NewPlacesClient(apiKey string, opts ...PlacesOption) *PlacesClient {
	c := &PlacesClient{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  DefaultPlacesBaseURL,
		apiKey:   apiKey,
		language: "en",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

func (c *PlacesClient) Autocomplete(ctx context.Context, query string) ([]Prediction, error) {
	if c.apiKey == "" {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Set("input", query)
	params.Set("language", c.language)

	var resp autocompleteResponse
	if err := c.get(ctx, "/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	out := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			PrimaryText:   p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out, nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		Website          string  `json:"website"`
		Phone            string  `json:"formatted_phone_number"`
	} `json:"result"`
}

func (c *PlacesClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if c.apiKey == "" {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("language", c.language)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || resp.Status == "NOT_FOUND" {
		return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	r := resp.Result
	details := &PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		Website:          r.Website,
		Phone:            r.Phone,
	}
	for _, photo := range r.Photos {
		if photo.PhotoReference != "" {
			details.PhotoRefs = append(details.PhotoRefs, photo.PhotoReference)
		}
	}
	return details, nil
}

func (c *PlacesClient) PhotoURL(ref string, maxWidth int) string {
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	params.Set("photoreference", ref)
	params.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + params.Encode()
}

func (c *PlacesClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	return getJSON(ctx, c.http, c.baseURL+path+"?"+params.Encode(), "places", out)
}

// getJSON fetches target and decodes a 2xx JSON body into out. what names
// the service in errors.
func getJSON(ctx context.Context, client *http.Client, target, what string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", what, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s request failed: unexpected status %s", what, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response failed: %w", what, err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response failed: %w", what, err)
	}
	return nil
}

func checkStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	}
	if message != "" {
		return fmt.Errorf("places api returned %s: %s", status, message)
	}
	return fmt.Errorf("places api returned %s", status)
}
