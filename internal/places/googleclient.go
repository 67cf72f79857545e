package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pantryscout-discovery/internal/model"
)

// GoogleClient implements Provider against the Google Places API,
// grounded on the geocoding HTTP client pattern used elsewhere in the
// corpus (essentials/geocoding.Client): a plain http.Client, a query
// string built with net/url, and a narrow response struct decoded
// straight off the body.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleClient builds a client. timeout bounds every request this
// client makes, independent of any per-job deadline the caller also
// enforces.
func NewGoogleClient(apiKey string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://maps.googleapis.com/maps/api/place",
	}
}

type nearbySearchResponse struct {
	Results []nearbyResult `json:"results"`
	Status  string         `json:"status"`
}

type nearbyResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c *GoogleClient) Search(ctx context.Context, query string, center model.Point, radiusMeters int) ([]model.Candidate, error) {
	u := fmt.Sprintf("%s/nearbysearch/json?location=%s,%s&radius=%s&keyword=%s&key=%s",
		c.baseURL,
		strconv.FormatFloat(center.Lat, 'f', -1, 64),
		strconv.FormatFloat(center.Lng, 'f', -1, 64),
		strconv.Itoa(radiusMeters),
		url.QueryEscape(query),
		c.apiKey,
	)

	var resp nearbySearchResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places: nearby search status=%s", resp.Status)
	}

	out := make([]model.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, model.Candidate{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			FormattedAddress: r.Vicinity,
			Lat:              r.Geometry.Location.Lat,
			Lng:              r.Geometry.Location.Lng,
		})
	}
	return out, nil
}

type placeDetailsResponse struct {
	Result struct {
		Website string `json:"website"`
	} `json:"result"`
	Status string `json:"status"`
}

func (c *GoogleClient) Website(ctx context.Context, placeID string) (string, error) {
	u := fmt.Sprintf("%s/details/json?place_id=%s&fields=website&key=%s",
		c.baseURL, url.QueryEscape(placeID), c.apiKey)

	var resp placeDetailsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	if resp.Status != "OK" {
		return "", nil // no website on file is not an error the caller should see
	}
	return resp.Result.Website, nil
}

func (c *GoogleClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("places: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places: HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decode response: %w", err)
	}
	return nil
}
