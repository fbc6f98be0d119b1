package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	val      int64
	err      error
	lastKeys []string
	lastArgs []interface{}
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.val)
	return cmd
}

func TestRedisLimiter_AllowsUnderMax(t *testing.T) {
	mock := &mockRedisEvaler{val: 3}
	l := NewRedisLimiter(mock, 5, time.Minute, "login:")

	if !l.Allow(context.Background(), "ann@example.com") {
		t.Fatalf("count under max should be allowed")
	}
	if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "login:ann@example.com" {
		t.Fatalf("unexpected keys: %v", mock.lastKeys)
	}
	if len(mock.lastArgs) != 1 || mock.lastArgs[0] != int64(60000) {
		t.Fatalf("unexpected args: %v", mock.lastArgs)
	}
}

func TestRedisLimiter_DeniesOverMax(t *testing.T) {
	mock := &mockRedisEvaler{val: 6}
	l := NewRedisLimiter(mock, 5, time.Minute, "login:")

	if l.Allow(context.Background(), "ann@example.com") {
		t.Fatalf("count over max should be denied")
	}
}

func TestRedisLimiter_AllowsExactlyMax(t *testing.T) {
	mock := &mockRedisEvaler{val: 5}
	l := NewRedisLimiter(mock, 5, time.Minute, "login:")

	if !l.Allow(context.Background(), "ann@example.com") {
		t.Fatalf("count equal to max should still be allowed")
	}
}

func TestRedisLimiter_FailsOpenOnError(t *testing.T) {
	mock := &mockRedisEvaler{err: errors.New("redis down")}
	l := NewRedisLimiter(mock, 1, time.Minute, "login:")

	if !l.Allow(context.Background(), "ann@example.com") {
		t.Fatalf("redis outage must fail open")
	}
}
