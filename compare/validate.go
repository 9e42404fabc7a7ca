package compare

import (
	"fmt"
	"strings"

	"github.com/Hamza-spc/CountryCompare/types"
)

// Validation is the outcome of checking a country record. Errors make the
// record unusable; warnings flag implausible values.
type Validation struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks required fields and value ranges.
func Validate(c types.Country) Validation {
	v := Validation{Valid: true, Errors: []string{}, Warnings: []string{}}

	required := []struct {
		field string
		ok    bool
	}{
		{"name", strings.TrimSpace(c.Name) != ""},
		{"capital", strings.TrimSpace(c.Capital) != ""},
		{"population", c.Population != 0},
		{"area", c.Area != 0},
		{"region", strings.TrimSpace(c.Region) != ""},
	}
	for _, r := range required {
		if !r.ok {
			v.Errors = append(v.Errors, fmt.Sprintf("Missing required field: %s", r.field))
			v.Valid = false
		}
	}

	if c.Population < 0 {
		v.Warnings = append(v.Warnings, "Population should be positive")
	}
	if c.Area < 0 {
		v.Warnings = append(v.Warnings, "Area should be positive")
	}
	if c.HDI < 0 || c.HDI > 1 {
		v.Warnings = append(v.Warnings, "HDI should be between 0 and 1")
	}
	if c.InternetPenetration < 0 || c.InternetPenetration > 100 {
		v.Warnings = append(v.Warnings, "Internet penetration should be between 0 and 100%")
	}
	if c.LifeExpectancy < 0 || c.LifeExpectancy > 120 {
		v.Warnings = append(v.Warnings, "Life expectancy should be between 0 and 120")
	}
	return v
}
