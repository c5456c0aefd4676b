package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
	Ready(ctx context.Context) bool
}

type healthUsecase struct {
	db    *pgxpool.Pool
	redis *goredis.Client
}

// NewHealthUsecase accepts a nil redis client when rate limiting and login
// tracking run without Redis.
func NewHealthUsecase(db *pgxpool.Pool, redis *goredis.Client) HealthUsecase {
	return &healthUsecase{db: db, redis: redis}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status":   "ok",
		"database": "ok",
		"redis":    "disabled",
	}

	if u.db == nil {
		status["database"] = "unavailable"
		status["status"] = "degraded"
	} else if err := u.db.Ping(ctx); err != nil {
		status["database"] = "unavailable"
		status["status"] = "degraded"
	}

	if u.redis != nil {
		if err := u.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
			status["status"] = "degraded"
		} else {
			status["redis"] = "ok"
		}
	}
	return status
}

// Ready reports whether the database is reachable; Redis is optional
func (u *healthUsecase) Ready(ctx context.Context) bool {
	return u.Check(ctx)["database"] == "ok"
}
