package mock

import (
	"context"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var redisMock *Redis

// Redis is an in-process Redis server and a client connected to it.
type Redis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

func NewRedis() *Redis {
	redisOnce.Do(
		func() {
			redisMock = openRedis()
		},
	)

	return redisMock
}

func openRedis() *Redis {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	client := redis.NewClient(
		&redis.Options{
			Addr: server.Addr(),
		},
	)

	return &Redis{Client: client, Server: server}
}

// Keys returns the keys currently stored.
func (r *Redis) Keys() []string {
	return r.Server.Keys()
}

func (r *Redis) Clear() error {
	return r.Client.FlushAll(context.TODO()).Err()
}
