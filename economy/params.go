package economy

import "time"

// Params holds the constants of the deterministic tier and the live-tier timeout.
// The jitter amplitudes are empirical; they are kept configurable rather than
// treated as meaningful.
type Params struct {
	// RegionBase is the base GDP per capita by region.
	RegionBase map[string]float64
	// FallbackRegion is used for regions missing from RegionBase.
	FallbackRegion string

	HDIJitter            float64
	LifeExpectancyJitter float64
	InternetJitter       float64

	ProviderTimeout time.Duration
}

// DefaultParams returns the standard estimation constants.
func DefaultParams() Params {
	return Params{
		RegionBase:           DefaultRegionBase(),
		FallbackRegion:       "Asia",
		HDIJitter:            0.01,
		LifeExpectancyJitter: 5,
		InternetJitter:       7.5,
		ProviderTimeout:      10 * time.Second,
	}
}

func (p Params) base(region string) float64 {
	if b, ok := p.RegionBase[region]; ok {
		return b
	}
	if b, ok := p.RegionBase[p.FallbackRegion]; ok {
		return b
	}
	return DefaultRegionBase()["Asia"]
}
