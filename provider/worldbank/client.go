package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/provider"
)

// DefaultBaseURL is the public World Bank v2 endpoint.
const DefaultBaseURL = "https://api.worldbank.org/v2"

// MostRecentValues is how many yearly observations are requested per
// indicator; the newest non-null one wins.
const MostRecentValues = 5

// Indicators maps economy indicator names to World Bank series codes.
// The World Bank does not publish HDI, so it is always back-filled.
var Indicators = map[string]string{
	economy.IndicatorGDP:                 "NY.GDP.MKTP.CD",
	economy.IndicatorGDPPerCapita:        "NY.GDP.PCAP.CD",
	economy.IndicatorLifeExpectancy:      "SP.DYN.LE00.IN",
	economy.IndicatorInternetPenetration: "IT.NET.USER.ZS",
}

// Client fetches economic indicators. It implements economy.IndicatorProvider.
type Client struct {
	baseURL string
	http    *provider.Client
	logger  *slog.Logger
}

var _ economy.IndicatorProvider = (*Client)(nil)

// NewClient creates an indicator client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, logger *slog.Logger, opts ...provider.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]provider.Option{provider.WithLogger(logger)}, opts...)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    provider.NewClient("world_bank", opts...),
		logger:  logger.With("provider", "world_bank"),
	}
}

type observation struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type apiMessage struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

// FetchIndicators queries every series in Indicators concurrently for the
// given ISO code. A series that fails or has no observation is left out of
// the result. An error is returned only when no series produced a value.
func (c *Client) FetchIndicators(ctx context.Context, iso string) (map[string]economy.Indicator, error) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "WorldBank", "FetchIndicators", "empty ISO code")
	}

	var (
		mu      sync.Mutex
		result  = make(map[string]economy.Indicator, len(Indicators))
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, series := range Indicators {
		name, series := name, series
		g.Go(func() error {
			ind, ok, err := c.fetchSeries(gctx, iso, series)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				lastErr = err
				c.logger.Debug("Indicator fetch failed", "iso", iso, "series", series, "error", err)
			case ok:
				result[name] = ind
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "WorldBank", "FetchIndicators", "fetch cancelled")
	}
	if len(result) == 0 {
		if lastErr != nil {
			return nil, errors.Wrap(lastErr, "WorldBank", "FetchIndicators", fmt.Sprintf("fetch %s", iso))
		}
		return nil, errors.WrapInvalid(errors.ErrNoIndicatorData, "WorldBank", "FetchIndicators",
			fmt.Sprintf("no observations for %s", iso))
	}
	return result, nil
}

// fetchSeries returns the newest non-null observation of one series.
func (c *Client) fetchSeries(ctx context.Context, iso, series string) (economy.Indicator, bool, error) {
	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s?format=json&mrv=%d",
		c.baseURL, url.PathEscape(iso), url.PathEscape(series), MostRecentValues)

	var pages []json.RawMessage
	if err := c.http.GetJSON(ctx, endpoint, &pages); err != nil {
		return economy.Indicator{}, false, err
	}
	return parseSeries(pages)
}

// parseSeries decodes the two-element [metadata, observations] response.
// An error payload is a one-element array carrying a message list.
func parseSeries(pages []json.RawMessage) (economy.Indicator, bool, error) {
	if len(pages) == 0 {
		return economy.Indicator{}, false, nil
	}
	if len(pages) == 1 {
		var msg apiMessage
		if err := json.Unmarshal(pages[0], &msg); err == nil && len(msg.Message) > 0 {
			return economy.Indicator{}, false, errors.WrapInvalid(errors.ErrInvalidData,
				"WorldBank", "parseSeries", msg.Message[0].Value)
		}
		return economy.Indicator{}, false, nil
	}

	var observations []observation
	if err := json.Unmarshal(pages[1], &observations); err != nil {
		return economy.Indicator{}, false, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "WorldBank", "parseSeries", "decode observations")
	}

	for _, obs := range observations {
		if obs.Value == nil {
			continue
		}
		year, _ := strconv.Atoi(obs.Date)
		return economy.Indicator{Value: *obs.Value, Year: year}, true, nil
	}
	return economy.Indicator{}, false, nil
}

// Ping checks that the indicator API answers.
func (c *Client) Ping(ctx context.Context) error {
	var pages []json.RawMessage
	endpoint := fmt.Sprintf("%s/country/DE?format=json", c.baseURL)
	if err := c.http.GetJSON(ctx, endpoint, &pages); err != nil {
		return errors.Wrap(err, "WorldBank", "Ping", "query API")
	}
	return nil
}
