package restcountries

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Hamza-spc/CountryCompare/errors"
	"github.com/Hamza-spc/CountryCompare/provider"
)

// DefaultBaseURL is the public REST Countries v3.1 endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// Fields is the field filter sent with every request.
const Fields = "name,capital,population,area,region,subregion,currencies,flags,cca2"

// ErrNotFound is returned by FetchByName when no country matches.
var ErrNotFound = errors.ErrCountryNotFound

// Client fetches the country catalog.
type Client struct {
	baseURL string
	http    *provider.Client
}

// NewClient creates a catalog client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...provider.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    provider.NewClient("rest_countries", opts...),
	}
}

// FetchAll returns every country in the catalog.
func (c *Client) FetchAll(ctx context.Context) ([]Country, error) {
	var countries []Country
	endpoint := fmt.Sprintf("%s/all?fields=%s", c.baseURL, Fields)
	if err := c.http.GetJSON(ctx, endpoint, &countries); err != nil {
		return nil, errors.Wrap(err, "RestCountries", "FetchAll", "fetch catalog")
	}
	return countries, nil
}

// FetchByName returns the country whose common name matches name, ignoring
// case. When the upstream name search returns only partial matches, the first
// result is used.
func (c *Client) FetchByName(ctx context.Context, name string) (*Country, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.WrapInvalid(ErrNotFound, "RestCountries", "FetchByName", "empty name")
	}

	var countries []Country
	endpoint := fmt.Sprintf("%s/name/%s?fields=%s", c.baseURL, url.PathEscape(name), Fields)
	if err := c.http.GetJSON(ctx, endpoint, &countries); err != nil {
		if stderrors.Is(err, errors.ErrCountryNotFound) {
			return nil, errors.WrapInvalid(ErrNotFound, "RestCountries", "FetchByName",
				fmt.Sprintf("country %q", name))
		}
		return nil, errors.Wrap(err, "RestCountries", "FetchByName", fmt.Sprintf("fetch %q", name))
	}
	if len(countries) == 0 {
		return nil, errors.WrapInvalid(ErrNotFound, "RestCountries", "FetchByName",
			fmt.Sprintf("country %q", name))
	}

	for i := range countries {
		if strings.EqualFold(countries[i].Name.Common, name) {
			return &countries[i], nil
		}
	}
	return &countries[0], nil
}

// Ping checks that the catalog answers a minimal query.
func (c *Client) Ping(ctx context.Context) error {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("%s/alpha/de?fields=name", c.baseURL)
	if err := c.http.GetJSON(ctx, endpoint, &raw); err != nil {
		return errors.Wrap(err, "RestCountries", "Ping", "query catalog")
	}
	return nil
}
