package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// FeedbackRateLimiter frena ráfagas de feedback de un mismo usuario. No
// protege la corrección (el pipeline serializa por usuario de todos
// modos), solo evita que un cliente ruidoso infle el historial.
type FeedbackRateLimiter interface {
	Allow(key string) bool
}

const redisFeedbackAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisFeedbackRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisFeedbackRateLimiter(client *redis.Client, window time.Duration, max int) FeedbackRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisFeedbackRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "feedback:rl:",
	}
}

// Allow es fail-open: si Redis no responde, el feedback pasa.
func (l *redisFeedbackRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisFeedbackAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
