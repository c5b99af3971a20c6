package middleware

import (
	"fmt"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	// Period suffix understood by limiter: S, M, H or D.
	Period string
	Store  limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{Prefix: "hr_ontology_rl"})
}

// RateLimit limits requests per client IP.
func RateLimit(cfg RateLimitConfig) (mux.MiddlewareFunc, error) {
	period := cfg.Period
	if period == "" {
		period = "S"
	}
	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-%s", cfg.RequestsPerPeriod, period))
	if err != nil {
		return nil, err
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	m := mhttp.NewMiddleware(limiter.New(store, rate, limiter.WithTrustForwardHeader(true)))
	return m.Handler, nil
}
