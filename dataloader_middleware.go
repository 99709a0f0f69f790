package main

import (
	"net/http"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// DataLoaderMiddleware creates middleware that injects dataloaders into the request context
func DataLoaderMiddleware(reg *match.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Fresh loaders per request so the cache never outlives it
			ctx := WithDataLoaders(r.Context(), NewDataLoaders(reg))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
