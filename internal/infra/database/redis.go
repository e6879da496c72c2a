package database

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewAsynqRedis returns connection options for the task queue, pointing at
// the same Redis instance as NewRedis.
func NewAsynqRedis(addr string, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
}
