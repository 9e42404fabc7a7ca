// Package restcountries is a client for the REST Countries v3.1 API, the
// source of country names, capitals, population, area, region, currency and
// flags.
//
//	catalog := restcountries.NewClient(cfg.Providers.RestCountriesURL,
//		provider.WithLogger(logger),
//		provider.WithRecorder(metrics),
//	)
//	all, err := catalog.FetchAll(ctx)
//
// FetchByName returns an error matching ErrNotFound when the API has no
// country by that name.
package restcountries
