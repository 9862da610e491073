package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/hash066/biavault/internal/cache"
	viewHTTP "github.com/hash066/biavault/internal/view/http"
	viewUsecase "github.com/hash066/biavault/internal/view/usecase"
)

// RedisClient returns the Redis client, or nil when no address is configured.
func (c *Container) RedisClient() *redis.Client {
	c.redisClientInit.Do(func() {
		if c.config.RedisAddr == "" {
			return
		}
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
	})
	return c.redisClient
}

// ViewCache returns the derived view cache. Without a configured Redis
// address a no-op cache is used and every view read recomputes.
func (c *Container) ViewCache() (cache.ViewCache, error) {
	c.viewCacheInit.Do(func() {
		client := c.RedisClient()
		if client == nil {
			c.Logger().Warn("no redis address configured, view caching disabled",
				slog.String("component", "view_cache"))
			c.viewCache = cache.NewNoOpViewCache()
			return
		}
		c.viewCache = cache.NewRedisViewCache(client, c.config.ViewCacheTTL)
	})
	return c.viewCache, nil
}

// ViewUseCase returns the view use case with all its dependencies.
func (c *Container) ViewUseCase() (viewUsecase.ViewUseCase, error) {
	var err error
	c.viewUseCaseInit.Do(func() {
		snapshots, snapErr := c.SnapshotUseCase()
		if snapErr != nil {
			err = snapErr
			c.initErrors["viewUseCase"] = snapErr
			return
		}

		viewCache, cacheErr := c.ViewCache()
		if cacheErr != nil {
			err = cacheErr
			c.initErrors["viewUseCase"] = cacheErr
			return
		}

		c.viewUseCase = viewUsecase.NewViewUseCase(snapshots, viewCache)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["viewUseCase"]; exists {
		return nil, storedErr
	}
	return c.viewUseCase, nil
}

// ViewHandler returns the view HTTP handler.
func (c *Container) ViewHandler() (*viewHTTP.ViewHandler, error) {
	useCase, err := c.ViewUseCase()
	if err != nil {
		return nil, err
	}
	return viewHTTP.NewViewHandler(useCase, c.Logger()), nil
}
