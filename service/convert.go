package service

import (
	"time"

	"github.com/Hamza-spc/CountryCompare/provider/restcountries"
	"github.com/Hamza-spc/CountryCompare/types"
)

// fromCatalog maps a REST Countries record onto a country record without
// economic fields.
func fromCatalog(rc restcountries.Country, now time.Time) types.Country {
	return types.Country{
		Name:        rc.CommonName(),
		Capital:     rc.CapitalName(),
		Population:  rc.Population,
		Area:        rc.Area,
		Region:      rc.RegionName(),
		Subregion:   rc.SubregionName(),
		Currency:    rc.CurrencyCode(),
		FlagURL:     rc.FlagURL(),
		ISOCode:     rc.CCA2,
		LastUpdated: now.UTC(),
	}
}
