// Package handler adapts typed request handlers to http.HandlerFunc.
//
// A handler receives a request struct filled by binders and returns a
// Response that renders itself:
//
//	type infoRequest struct {
//		Ref string `path:"*"`
//	}
//
//	r.Get("/info/*", handler.Wrap(func(ctx context.Context, req infoRequest) handler.Response {
//		info, err := client.FileInfo(ctx, req.Ref)
//		if err != nil {
//			return handler.Fail(err)
//		}
//		return handler.JSON(info)
//	}, handler.WithBinders(binder.Path(chi.URLParam))))
//
// Binder and render failures go to the ErrorHandler. The default one renders
// a JSON error; NewErrorHandler adds error classification and logging.
package handler
