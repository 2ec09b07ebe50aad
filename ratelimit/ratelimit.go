// Package ratelimit throttles requests per client address using a memory or
// Redis backed counter store.
package ratelimit

import (
	"net/http"
	"strings"

	"event-registration/models"
	"event-registration/utils"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "eventreg:limiter"

// NewStore picks the counter store from a URL: "memory://" (or empty) keeps
// counters in process, "redis://" and "rediss://" share them through Redis.
func NewStore(url string) (limiter.Store, error) {
	switch {
	case url == "" || strings.HasPrefix(url, "memory://"):
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix}), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{Prefix: keyPrefix})
	}
	return nil, errors.Errorf("unsupported rate limit store %q", url)
}

// Middleware limits each client address to the formatted rate, e.g. "10-M".
// Counters are kept per name so several limits can share one store.
func Middleware(store limiter.Store, name, formatted string, log logrus.FieldLogger) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, errors.Wrapf(err, "rate %q", formatted)
	}
	l := limiter.New(store, rate)
	m := stdlib.NewMiddleware(l,
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return name + ":" + l.GetIPKey(r)
		}),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(logrus.Fields{"limit": name, "path": r.URL.Path, "remote": r.RemoteAddr}).Warn("rate limit reached")
			utils.RespondWithError(w, http.StatusTooManyRequests, models.Error{Message: "Too many requests, try again later"})
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.WithError(err).Error("rate limit store")
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Internal server error"})
		}),
	)
	return m.Handler, nil
}
