package suite

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTL = 120
	startupWait  = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite - a Redis server of its own plus key names unique to the test, so the view
// channel, the command channel and the ack list never leak between tests.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis *redis.Client

	Channel  string
	Commands string
	AckKey   string
}

// New - starts a throwaway Redis container for the test. Tests are skipped with -short.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping docker backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupWait)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = startupWait

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(host *docker.HostConfig) {
		host.AutoRemove = true
		host.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}

	// hard kill even if cleanup never runs
	_ = resource.Expire(containerTTL)

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})

	// the server inside the container takes a moment to accept connections
	if err = pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		_ = pool.Purge(resource)
		t.Fatalf("could not reach redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()

		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})

	prefix := "test:" + strings.ReplaceAll(t.Name(), "/", ":")

	return ctx, &Suite{
		T:        t,
		Logger:   slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Redis:    client,
		Channel:  prefix + ":view",
		Commands: prefix + ":input",
		AckKey:   prefix + ":ack",
	}
}

// SubscribeView - returns the view channel once the server has confirmed the subscription.
func (that *Suite) SubscribeView(ctx context.Context) <-chan *redis.Message {
	that.Helper()

	sub := that.Redis.Subscribe(ctx, that.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		that.Fatalf("could not subscribe to %s: %v", that.Channel, err)
	}
	that.Cleanup(func() { _ = sub.Close() })

	return sub.Channel()
}
