// Package fdfshttp exposes an fdfs.Client over HTTP with a chi router.
//
//	r := fdfshttp.NewRouter(client, fdfshttp.WithLogger(log))
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	err := srv.Run(ctx, r)
//
// JSON replies use the envelope {"data": ..., "error": {"code", "message"}}.
// Missing files answer 404; malformed paths, extensions and images answer
// 400. Every response carries an X-Request-ID header.
package fdfshttp
