package economy

import (
	"hash/fnv"
	"math"
)

// seed is the 64-bit FNV-1a hash of the country name.
func seed(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// jitter maps 16 bits of the seed, selected by shift, onto [-amplitude, amplitude].
func jitter(s uint64, shift uint, amplitude float64) float64 {
	u := float64((s>>shift)&0xFFFF) / 0xFFFF
	return amplitude * (2*u - 1)
}

// variation maps the seed onto [0.5, 1.5).
func variation(s uint64) float64 {
	return 0.5 + float64(s%100)/100
}

func populationFactor(population int64) float64 {
	switch {
	case population > 100_000_000:
		return 0.6
	case population > 50_000_000:
		return 0.8
	case population > 10_000_000:
		return 1.0
	case population > 1_000_000:
		return 1.2
	default:
		return 1.4
	}
}

// hdiFromGDPPerCapita is piecewise linear in GDP per capita, before jitter and clamping.
func hdiFromGDPPerCapita(x float64) float64 {
	switch {
	case x > 50000:
		return 0.9 + (x-50000)/1e6
	case x > 20000:
		return 0.7 + (x-20000)/1e5
	case x > 5000:
		return 0.5 + (x-5000)/3e4
	default:
		return 0.3 + x/1e4
	}
}

const (
	hdiShift      = 16
	lifeShift     = 32
	internetShift = 48
)

func (p Params) hdi(s uint64, gdpPerCapita float64) float64 {
	return clamp(hdiFromGDPPerCapita(gdpPerCapita)+jitter(s, hdiShift, p.HDIJitter), 0.3, 0.99)
}

func (p Params) lifeExpectancy(s uint64, hdi float64) float64 {
	return clamp(50+hdi*35+jitter(s, lifeShift, p.LifeExpectancyJitter), 50, 85)
}

func (p Params) internet(s uint64, hdi float64) float64 {
	return clamp(hdi*100+jitter(s, internetShift, p.InternetJitter), 5, 95)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

// perCapita divides gdp by population, returning 0 for an empty population.
func perCapita(gdp float64, population int64) float64 {
	if population <= 0 {
		return 0
	}
	return gdp / float64(population)
}
