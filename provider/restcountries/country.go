package restcountries

import (
	"sort"
	"strings"
)

// Unknown is reported for missing textual fields.
const Unknown = "Unknown"

// Country is a REST Countries v3.1 record restricted to the requested fields.
type Country struct {
	Name       Name                `json:"name"`
	Capital    []string            `json:"capital"`
	Population int64               `json:"population"`
	Area       float64             `json:"area"`
	Region     string              `json:"region"`
	Subregion  string              `json:"subregion"`
	Currencies map[string]Currency `json:"currencies"`
	Flags      Flags               `json:"flags"`
	CCA2       string              `json:"cca2"`
}

// Name holds the common and official names.
type Name struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Currency describes one currency of a country.
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Flags holds flag image URLs.
type Flags struct {
	PNG string `json:"png"`
	SVG string `json:"svg"`
	Alt string `json:"alt"`
}

// CommonName returns the common name or Unknown.
func (c Country) CommonName() string {
	if c.Name.Common == "" {
		return Unknown
	}
	return c.Name.Common
}

// CapitalName joins all capitals with ", ".
func (c Country) CapitalName() string {
	if len(c.Capital) == 0 {
		return Unknown
	}
	return strings.Join(c.Capital, ", ")
}

// CurrencyCode returns the alphabetically first currency code, or Unknown.
// The upstream object has no stable key order once decoded.
func (c Country) CurrencyCode() string {
	if len(c.Currencies) == 0 {
		return Unknown
	}
	codes := make([]string, 0, len(c.Currencies))
	for code := range c.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes[0]
}

// RegionName returns the region or Unknown.
func (c Country) RegionName() string {
	if c.Region == "" {
		return Unknown
	}
	return c.Region
}

// SubregionName returns the subregion or Unknown.
func (c Country) SubregionName() string {
	if c.Subregion == "" {
		return Unknown
	}
	return c.Subregion
}

// FlagURL prefers the PNG flag.
func (c Country) FlagURL() string {
	if c.Flags.PNG != "" {
		return c.Flags.PNG
	}
	return c.Flags.SVG
}
