// Package natsclient manages the NATS connection backing the JetStream
// key-value record store.
//
// Client wraps nats.go with an explicit lifecycle (NewClient, Connect, Close),
// connection status tracking and a health callback. Connect makes a single
// attempt; callers retry with pkg/retry:
//
//	client, err := natsclient.NewClient(cfg.NATS.URL,
//	    natsclient.WithLogger(logger),
//	    natsclient.WithHealthChangeCallback(metrics.RecordNATSStatus),
//	)
//	if err != nil {
//	    return err
//	}
//	err = retry.Do(ctx, retry.Quick(), func() error { return client.Connect(ctx) })
//	defer client.Close(ctx)
//
// # Key-Value
//
// CreateKeyValueBucket returns an existing bucket or creates it. KVStore adds
// per-operation timeouts, value size limits and UpdateWithRetry, a
// read-modify-write loop using revision checks:
//
//	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{Bucket: "countries"})
//	kv := client.NewKVStore(bucket)
//	err = kv.UpdateWithRetry(ctx, key, func(current []byte) ([]byte, error) {
//	    if current != nil && !stale(current) {
//	        return nil, natsclient.ErrSkipUpdate
//	    }
//	    return next, nil
//	})
//
// Missing keys are reported as ErrKVKeyNotFound; exhausted conflict retries
// as ErrKVMaxRetriesExceeded.
//
// # Testing
//
// Builds with the integration tag get NewTestClient, which starts a NATS
// server with JetStream in a container using testcontainers-go.
package natsclient
