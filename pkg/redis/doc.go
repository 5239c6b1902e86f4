// Package redis provides helpers for connecting to Redis and a small
// namespaced key-value Store on top of github.com/redis/go-redis/v9.
//
// # Usage
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, "fdfs:info:")
//	if err := store.Set(ctx, "group1/M00/00/01/a.jpg", data, time.Hour); err != nil {
//		return err
//	}
//
// Healthcheck returns a probe function suitable for the HTTP health handler.
package redis
