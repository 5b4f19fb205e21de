// Package googlemaps provides a places.Client implementation backed by the
// Google Places web service.
package googlemaps

import (
	"context"
	"encoding/json"
	"finder/pkg/places"
	"finder/pkg/serrors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the root of the Places web service.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	// MaxRadius is the largest radius accepted by nearby search, in meters.
	MaxRadius = 50000

	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusRequestDenied  = "REQUEST_DENIED"
	statusInvalidRequest = "INVALID_REQUEST"
	statusNotFound       = "NOT_FOUND"
)

// detailsFields are the only fields requested from place details, to keep
// the call in the cheapest billing tier that still carries phone and website.
var detailsFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"formatted_phone_number",
	"website",
	"rating",
	"user_ratings_total",
	"types",
	"business_status",
	"geometry",
}

// Options configure a Client.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	APIKey  string
	// Language of names and addresses, e.g. "th".
	Language string
	// Region biases results to a country code top level domain, e.g. "th".
	Region string
}

// Client talks to the Places REST API and fulfills the places.Client
// interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	options    Options
}

// Ensure Client conforms to the places.Client interface at compile time.
var _ places.Client = (*Client)(nil)

// New constructs a Client using the provided http.Client.
func New(httpClient *http.Client, options Options) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		options:    options,
	}
}

type apiPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Phone            string   `json:"formatted_phone_number"`
	Website          string   `json:"website"`
	Rating           float64  `json:"rating"`
	RatingsTotal     int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (a apiPlace) toPlace() places.Place {
	address := a.FormattedAddress
	if address == "" {
		address = a.Vicinity
	}

	return places.Place{
		PlaceID:        a.PlaceID,
		Name:           a.Name,
		Address:        address,
		Phone:          a.Phone,
		Website:        a.Website,
		Rating:         a.Rating,
		RatingsTotal:   a.RatingsTotal,
		Types:          a.Types,
		BusinessStatus: a.BusinessStatus,
		Location:       places.LatLng{Lat: a.Geometry.Location.Lat, Lng: a.Geometry.Location.Lng},
	}
}

type apiResponse struct {
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message"`
	Results       []apiPlace `json:"results"`
	Result        *apiPlace  `json:"result"`
	NextPageToken string     `json:"next_page_token"`
}

func formatLatLng(l places.LatLng) string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// TextSearch runs a text search.
func (c *Client) TextSearch(ctx context.Context, req places.TextSearchRequest) (places.Page, error) {
	params := url.Values{}
	if req.PageToken != "" {
		// other parameters are ignored when a page token is given
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("query", req.Query)
		if req.Location != nil {
			params.Set("location", formatLatLng(*req.Location))
		}
		if req.Radius > 0 {
			params.Set("radius", strconv.Itoa(req.Radius))
		}
	}

	return c.search(ctx, "textsearch", params)
}

// NearbySearch runs a nearby search. The radius is capped to MaxRadius.
func (c *Client) NearbySearch(ctx context.Context, req places.NearbySearchRequest) (places.Page, error) {
	params := url.Values{}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("location", formatLatLng(req.Location))
		params.Set("radius", strconv.Itoa(min(req.Radius, MaxRadius)))
		if req.Keyword != "" {
			params.Set("keyword", req.Keyword)
		}
		if req.Type != "" {
			params.Set("type", req.Type)
		}
	}

	return c.search(ctx, "nearbysearch", params)
}

func (c *Client) search(ctx context.Context, endpoint string, params url.Values) (places.Page, error) {
	res, err := c.get(ctx, endpoint, params)
	if err != nil {
		return places.Page{}, err
	}

	page := places.Page{
		Places:        make([]places.Place, 0, len(res.Results)),
		NextPageToken: res.NextPageToken,
	}
	for _, r := range res.Results {
		page.Places = append(page.Places, r.toPlace())
	}

	return page, nil
}

// Details fetches the details of a single place.
func (c *Client) Details(ctx context.Context, placeID string) (*places.Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(detailsFields, ","))

	res, err := c.get(ctx, "details", params)
	if err != nil {
		return nil, err
	}
	if res.Result == nil {
		return nil, serrors.With(serrors.ErrNotFound, "place %q not found", placeID)
	}

	p := res.Result.toPlace()

	return &p, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*apiResponse, error) {
	params.Set("key", c.options.APIKey)
	if c.options.Language != "" {
		params.Set("language", c.options.Language)
	}
	if c.options.Region != "" && endpoint != "details" {
		params.Set("region", c.options.Region)
	}

	reqURL := c.options.BaseURL + "/" + endpoint + "/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode >= 500:
		return nil, serrors.With(serrors.ErrUnavailable, "%s failed with HTTP %d", endpoint, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s failed with HTTP %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var res apiResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return &res, statusError(endpoint, res)
}

// statusError maps the status field of a Places response to an error kind.
func statusError(endpoint string, res apiResponse) error {
	msg := res.ErrorMessage
	if msg == "" {
		msg = res.Status
	}

	switch res.Status {
	case statusOK, statusZeroResults:
		return nil
	case statusOverQueryLimit:
		return serrors.With(serrors.ErrRateLimited, "%s: %s", endpoint, msg)
	case statusRequestDenied:
		return serrors.With(serrors.ErrUnauthorized, "%s: %s", endpoint, msg)
	case statusInvalidRequest:
		return serrors.With(serrors.ErrBadRequest, "%s: %s", endpoint, msg)
	case statusNotFound:
		return serrors.With(serrors.ErrNotFound, "%s: %s", endpoint, msg)
	default:
		return serrors.With(serrors.ErrUnavailable, "%s: %s", endpoint, msg)
	}
}
