package ptvapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"tidbyt.dev/ptv/downloader"
	"tidbyt.dev/ptv/model"
	"tidbyt.dev/ptv/parse"
)

const (
	DefaultBaseURL       = "https://timetableapi.ptv.vic.gov.au"
	DefaultTimeout       = 10 * time.Second
	DefaultMaxSize       = 1 << 20 // 1 MB
	DefaultMaxRetries    = 2
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultMetadataTTL   = 1 * time.Hour
)

var ErrMissingCredentials = errors.New("missing developer ID or API key")

// Client for the PTV Timetable API v3.
//
// Every request is signed with the developer ID and API key issued by
// PTV. Direction and route lookups are cached by the Downloader for
// MetadataTTL; departures are always fetched fresh.
type Client struct {
	BaseURL       string
	DevID         string
	Key           string
	Timeout       time.Duration
	MaxSize       int
	MaxRetries    uint64
	RetryInterval time.Duration
	MetadataTTL   time.Duration
	Downloader    downloader.Downloader
}

func NewClient(devID string, key string) *Client {
	return &Client{
		BaseURL:       DefaultBaseURL,
		DevID:         devID,
		Key:           key,
		Timeout:       DefaultTimeout,
		MaxSize:       DefaultMaxSize,
		MaxRetries:    DefaultMaxRetries,
		RetryInterval: DefaultRetryInterval,
		MetadataTTL:   DefaultMetadataTTL,
		Downloader:    downloader.NewMemory(),
	}
}

// Computes the signature for an endpoint (path and query, devid
// included): HMAC-SHA1 keyed with the API key, hex encoded.
func Sign(key string, request string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(request))
	return hex.EncodeToString(mac.Sum(nil))
}

// Returns the full URL for an endpoint, with devid and signature
// appended.
func (c *Client) SignedURL(endpoint string) (string, error) {
	if c.DevID == "" || c.Key == "" {
		return "", ErrMissingCredentials
	}

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	request := endpoint + sep + "devid=" + url.QueryEscape(c.DevID)

	return fmt.Sprintf("%s%s&signature=%s", strings.TrimSuffix(c.BaseURL, "/"), request, Sign(c.Key, request)), nil
}

// Fetches an endpoint. Network errors, 5xx and 429 responses are
// retried with exponential backoff, at most MaxRetries times.
func (c *Client) get(ctx context.Context, endpoint string, cache bool) ([]byte, error) {
	signed, err := c.SignedURL(endpoint)
	if err != nil {
		return nil, err
	}

	options := downloader.GetOptions{
		Timeout:  c.Timeout,
		MaxSize:  c.MaxSize,
		Cache:    cache,
		CacheTTL: c.MetadataTTL,
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.RetryInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.MaxRetries), ctx)

	body, err := backoff.RetryWithData(func() ([]byte, error) {
		body, err := c.Downloader.Get(ctx, signed, nil, options)
		if err != nil {
			var statusErr *downloader.StatusError
			if errors.As(err, &statusErr) && !statusErr.Temporary() {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return body, nil
	}, b)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", endpoint, err)
	}

	return body, nil
}

// Lists upcoming departures from a stop. If routeID is non-zero, only
// departures on that route are included.
func (c *Client) Departures(
	ctx context.Context,
	routeType model.RouteType,
	stopID string,
	routeID int,
	maxResults int,
) ([]model.Departure, error) {

	endpoint := fmt.Sprintf("/v3/departures/route_type/%d/stop/%s", int(routeType), url.PathEscape(stopID))
	if routeID != 0 {
		endpoint += fmt.Sprintf("/route/%d", routeID)
	}
	if maxResults > 0 {
		endpoint += fmt.Sprintf("?max_results=%d", maxResults)
	}

	body, err := c.get(ctx, endpoint, false)
	if err != nil {
		return nil, err
	}

	departures, err := parse.ParseDepartures(body)
	if err != nil {
		return nil, fmt.Errorf("parsing departures: %w", err)
	}

	return departures, nil
}

// Lists all routes travelling in the given direction, across all
// route types.
func (c *Client) Directions(ctx context.Context, directionID int) ([]model.DirectionInfo, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v3/directions/%d", directionID), true)
	if err != nil {
		return nil, err
	}

	directions, err := parse.ParseDirections(body)
	if err != nil {
		return nil, fmt.Errorf("parsing directions: %w", err)
	}

	return directions, nil
}

func (c *Client) Route(ctx context.Context, routeID int) (model.RouteIdentity, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v3/routes/%d", routeID), true)
	if err != nil {
		return model.RouteIdentity{}, err
	}

	route, err := parse.ParseRoute(body)
	if err != nil {
		return model.RouteIdentity{}, fmt.Errorf("parsing route: %w", err)
	}
	if route.RouteID == 0 {
		route.RouteID = routeID
	}

	return route, nil
}
