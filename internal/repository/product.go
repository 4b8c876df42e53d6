package repository

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
)

// OfflineFirstProducts serves cached products first and then refreshes them
// from the remote catalog.
type OfflineFirstProducts struct {
	local  *LocalDataSource
	remote RemoteDataSource
	logger *slog.Logger
}

var _ ProductRepository = (*OfflineFirstProducts)(nil)

// NewProductRepository creates an offline-first product repository.
func NewProductRepository(local *LocalDataSource, remote RemoteDataSource, logger *slog.Logger) *OfflineFirstProducts {
	return &OfflineFirstProducts{local: local, remote: remote, logger: logger}
}

// Products emits Loading, then the cached list if it is not empty, then the
// remote list. A remote failure is emitted only when nothing was cached.
func (r *OfflineFirstProducts) Products(ctx context.Context) <-chan domain.Result[[]domain.Product] {
	return offlineFirst(ctx, r.logger, "products",
		func(ctx context.Context) ([]domain.Product, bool) {
			cached := r.local.Products(ctx)
			return cached, len(cached) > 0
		},
		r.remote.FetchProducts,
		r.local.SaveProducts,
	)
}

// Product is Products for a single id.
func (r *OfflineFirstProducts) Product(ctx context.Context, id string) <-chan domain.Result[domain.Product] {
	return offlineFirst(ctx, r.logger, "product",
		func(ctx context.Context) (domain.Product, bool) {
			return r.local.Product(ctx, id)
		},
		func(ctx context.Context) (domain.Product, error) {
			return r.remote.FetchProduct(ctx, id)
		},
		r.local.SaveProduct,
	)
}

// offlineFirst runs the cache-then-network sequence on its own goroutine.
// Every send gives up when ctx ends; the channel is closed afterwards.
func offlineFirst[T any](
	ctx context.Context,
	logger *slog.Logger,
	resource string,
	cached func(context.Context) (T, bool),
	fetch func(context.Context) (T, error),
	save func(context.Context, T),
) <-chan domain.Result[T] {
	out := make(chan domain.Result[T])

	send := func(r domain.Result[T]) bool {
		select {
		case out <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(out)

		if !send(domain.Loading[T]()) {
			return
		}

		local, hasLocal := cached(ctx)
		if hasLocal && !send(domain.Success(local)) {
			return
		}

		fresh, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if hasLocal {
				logger.InfoContext(ctx, "remote fetch failed, serving cache",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return
			}
			send(domain.Failure[T](err))
			return
		}

		save(ctx, fresh)
		send(domain.Success(fresh))
	}()

	return out
}
