// Package storage defines Store, the persistence boundary for country and
// comparison records.
//
// Two implementations exist:
//   - storage/memstore keeps records in process memory. It is used when no
//     NATS URL is configured and in tests.
//   - storage/kvstore keeps records in a NATS JetStream key-value bucket,
//     using revision checks so concurrent refreshes never lose updates.
//
// UpsertCountry applies the refresh policy shared by both: a stored country
// is only replaced when it is older than the given age (DefaultStaleAfter,
// one day). Records are always written whole.
package storage
