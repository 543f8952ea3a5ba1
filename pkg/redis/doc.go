// Package redis connects to the Redis server that can back the usage
// counters instead of Postgres.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := usage.NewRedisStore(client)
//
// Healthcheck plugs the client into the readiness probe.
package redis
