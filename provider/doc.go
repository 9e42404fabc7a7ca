// Package provider holds the HTTP plumbing shared by the upstream data
// clients in provider/restcountries and provider/worldbank: JSON GET with
// status classification, retry on transient failures and request metrics.
package provider
