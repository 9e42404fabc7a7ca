package types

import (
	"strings"
	"time"

	"github.com/Hamza-spc/CountryCompare/economy"
	"github.com/Hamza-spc/CountryCompare/errors"
)

// Country is a country record: catalog metadata plus the economic fields.
type Country struct {
	Name       string  `json:"name"`
	Capital    string  `json:"capital"`
	Population int64   `json:"population"`
	Area       float64 `json:"area"`
	Region     string  `json:"region"`
	Subregion  string  `json:"subregion"`
	Currency   string  `json:"currency"`
	FlagURL    string  `json:"flag_url"`
	ISOCode    string  `json:"iso_code,omitempty"`

	GDP                 float64 `json:"gdp"`
	GDPPerCapita        float64 `json:"gdp_per_capita"`
	HDI                 float64 `json:"hdi"`
	LifeExpectancy      float64 `json:"life_expectancy"`
	InternetPenetration float64 `json:"internet_penetration"`

	DataSource  economy.Source `json:"data_source"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Key returns the storage key of the record: the lower-cased name.
func (c Country) Key() string {
	return CountryKey(c.Name)
}

// CountryKey normalizes a country name into a storage key.
func CountryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CacheKey implements cache.Keyer.
func (c Country) CacheKey() string {
	return "country:" + c.Key()
}

// ApplyEconomy copies estimated economic fields onto the record.
func (c *Country) ApplyEconomy(d economy.Data) {
	c.GDP = d.GDP
	c.GDPPerCapita = d.GDPPerCapita
	c.HDI = d.HDI
	c.LifeExpectancy = d.LifeExpectancy
	c.InternetPenetration = d.InternetPenetration
	c.DataSource = d.Source
}

// Economy returns the economic fields of the record.
func (c Country) Economy() economy.Data {
	return economy.Data{
		GDP:                 c.GDP,
		GDPPerCapita:        c.GDPPerCapita,
		HDI:                 c.HDI,
		LifeExpectancy:      c.LifeExpectancy,
		InternetPenetration: c.InternetPenetration,
		Source:              c.DataSource,
	}
}

// OlderThan reports whether the record was last updated more than maxAge before now.
func (c Country) OlderThan(now time.Time, maxAge time.Duration) bool {
	return c.LastUpdated.Before(now.Add(-maxAge))
}

// Validate checks the fields a record needs to be stored.
func (c Country) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Country", "Validate", "name cannot be empty")
	}
	if c.Population < 0 {
		return errors.WrapInvalid(errors.ErrInvalidData, "Country", "Validate", "population cannot be negative")
	}
	return nil
}
