package economy

import "strings"

// DefaultCodeTable returns the name to ISO code table used by the live tier.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		"Algeria":        "DZ",
		"Argentina":      "AR",
		"Australia":      "AU",
		"Austria":        "AT",
		"Bangladesh":     "BD",
		"Belgium":        "BE",
		"Brazil":         "BR",
		"Canada":         "CA",
		"Chile":          "CL",
		"China":          "CN",
		"Colombia":       "CO",
		"Comoros":        "KM",
		"Denmark":        "DK",
		"Egypt":          "EG",
		"Ethiopia":       "ET",
		"Finland":        "FI",
		"France":         "FR",
		"Germany":        "DE",
		"Ghana":          "GH",
		"Greece":         "GR",
		"India":          "IN",
		"Indonesia":      "ID",
		"Iran":           "IR",
		"Ireland":        "IE",
		"Israel":         "IL",
		"Italy":          "IT",
		"Jamaica":        "JM",
		"Japan":          "JP",
		"Kenya":          "KE",
		"Malaysia":       "MY",
		"Mexico":         "MX",
		"Morocco":        "MA",
		"Netherlands":    "NL",
		"New Zealand":    "NZ",
		"Nigeria":        "NG",
		"Norway":         "NO",
		"Pakistan":       "PK",
		"Peru":           "PE",
		"Philippines":    "PH",
		"Poland":         "PL",
		"Portugal":       "PT",
		"Russia":         "RU",
		"Saudi Arabia":   "SA",
		"Singapore":      "SG",
		"South Africa":   "ZA",
		"South Korea":    "KR",
		"Spain":          "ES",
		"Sweden":         "SE",
		"Switzerland":    "CH",
		"Thailand":       "TH",
		"Tunisia":        "TN",
		"Turkey":         "TR",
		"Ukraine":        "UA",
		"United Kingdom": "GB",
		"United States":  "US",
		"Vietnam":        "VN",
	}
}

// DefaultSampleTable returns the curated figures for twenty countries.
func DefaultSampleTable() map[string]Sample {
	return map[string]Sample{
		"Morocco":        {GDP: 126e9, HDI: 0.683, LifeExpectancy: 76.1, InternetPenetration: 74.4},
		"Algeria":        {GDP: 163e9, HDI: 0.748, LifeExpectancy: 77.0, InternetPenetration: 63.0},
		"Jamaica":        {GDP: 15e9, HDI: 0.734, LifeExpectancy: 74.5, InternetPenetration: 55.0},
		"Comoros":        {GDP: 1.2e9, HDI: 0.554, LifeExpectancy: 64.3, InternetPenetration: 8.0},
		"United Kingdom": {GDP: 3.1e12, HDI: 0.929, LifeExpectancy: 81.3, InternetPenetration: 95.0},
		"Germany":        {GDP: 4.2e12, HDI: 0.942, LifeExpectancy: 81.0, InternetPenetration: 90.0},
		"Brazil":         {GDP: 1.6e12, HDI: 0.754, LifeExpectancy: 75.9, InternetPenetration: 70.0},
		"China":          {GDP: 18e12, HDI: 0.761, LifeExpectancy: 77.1, InternetPenetration: 70.0},
		"United States":  {GDP: 25e12, HDI: 0.921, LifeExpectancy: 78.9, InternetPenetration: 90.0},
		"Japan":          {GDP: 4.9e12, HDI: 0.919, LifeExpectancy: 84.6, InternetPenetration: 93.0},
		"India":          {GDP: 3.4e12, HDI: 0.645, LifeExpectancy: 70.4, InternetPenetration: 45.0},
		"France":         {GDP: 2.9e12, HDI: 0.901, LifeExpectancy: 82.7, InternetPenetration: 88.0},
		"Canada":         {GDP: 2e12, HDI: 0.929, LifeExpectancy: 82.3, InternetPenetration: 95.0},
		"Australia":      {GDP: 1.6e12, HDI: 0.944, LifeExpectancy: 83.4, InternetPenetration: 90.0},
		"South Korea":    {GDP: 1.8e12, HDI: 0.906, LifeExpectancy: 83.0, InternetPenetration: 96.0},
		"Italy":          {GDP: 2.1e12, HDI: 0.895, LifeExpectancy: 83.5, InternetPenetration: 76.0},
		"Spain":          {GDP: 1.4e12, HDI: 0.904, LifeExpectancy: 83.2, InternetPenetration: 88.0},
		"Mexico":         {GDP: 1.3e12, HDI: 0.779, LifeExpectancy: 75.0, InternetPenetration: 70.0},
		"Russia":         {GDP: 1.8e12, HDI: 0.824, LifeExpectancy: 73.2, InternetPenetration: 80.0},
		"South Africa":   {GDP: 420e9, HDI: 0.713, LifeExpectancy: 64.3, InternetPenetration: 60.0},
	}
}

// DefaultRegionBase returns the base GDP per capita by region.
func DefaultRegionBase() map[string]float64 {
	return map[string]float64{
		"Europe":        25000,
		"North America": 30000,
		"Asia":          8000,
		"South America": 12000,
		"Africa":        3000,
		"Oceania":       20000,
		"Antarctic":     1000,
	}
}

// RegionFor maps catalog regions onto the keys of the region base table.
// The catalog reports both Americas under "Americas"; the subregion decides.
func RegionFor(region, subregion string) string {
	if region != "Americas" {
		return region
	}
	if strings.Contains(subregion, "South") {
		return "South America"
	}
	return "North America"
}
