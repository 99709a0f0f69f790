package main

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// DataLoaderContextKey is the key used to store dataloaders in context
type DataLoaderContextKey string

const dataLoaderKey DataLoaderContextKey = "dataloader"

// DataLoaders holds the per-request loaders
type DataLoaders struct {
	ProfileLoader *dataloader.Loader[string, match.Profile]
}

// NewDataLoaders creates loaders reading from the registry
func NewDataLoaders(reg *match.Registry) *DataLoaders {
	return &DataLoaders{
		ProfileLoader: dataloader.NewBatchedLoader(profileBatchFn(reg), dataloader.WithWait[string, match.Profile](16*time.Millisecond)),
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey, dl)
}

// profileBatchFn resolves a batch of profile ids in one pass over the registry.
func profileBatchFn(reg *match.Registry) dataloader.BatchFunc[string, match.Profile] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[match.Profile] {
		results := make([]*dataloader.Result[match.Profile], len(keys))
		for i, key := range keys {
			if err := ctx.Err(); err != nil {
				results[i] = &dataloader.Result[match.Profile]{Error: err}
				continue
			}
			p, ok := reg.Get(key)
			if !ok {
				results[i] = &dataloader.Result[match.Profile]{Error: fmt.Errorf("profile %q: %w", key, match.ErrNotFound)}
				continue
			}
			results[i] = &dataloader.Result[match.Profile]{Data: p}
		}
		return results
	}
}
