package mutex

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/pipekit/component"
	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := RedisConfig{
		Enabled:      true,
		Addr:         mr.Addr(),
		PollInterval: "10ms",
	}
	l, err := NewRedis(cfg, logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func TestRedisConfigDefaults(t *testing.T) {
	cfg := RedisConfig{Enabled: true, Addr: "localhost:6379"}
	cfg.ApplyDefaults()

	if cfg.KeyPrefix != "pipekit:lock:" {
		t.Errorf("KeyPrefix = %q", cfg.KeyPrefix)
	}
	if cfg.LockTTL != "30m" {
		t.Errorf("LockTTL = %q", cfg.LockTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestRedisConfigValidate(t *testing.T) {
	cfg := RedisConfig{Enabled: true}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing addr")
	}

	cfg.Addr = "localhost:6379"
	cfg.LockTTL = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad lock_ttl")
	}

	// Disabled config skips validation entirely.
	disabled := RedisConfig{LockTTL: "garbage"}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should not validate: %v", err)
	}
}

func TestRedisAcquireRelease(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "venv", time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !mr.Exists("pipekit:lock:venv") {
		t.Error("lock key missing in redis after acquire")
	}

	if err := l.Release(ctx, token); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if mr.Exists("pipekit:lock:venv") {
		t.Error("lock key still in redis after release")
	}
}

func TestRedisAcquireContended(t *testing.T) {
	l, _ := newTestRedisLocker(t)
	ctx := context.Background()

	first, err := l.Acquire(ctx, "shared", time.Second)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	// Release while the second waiter polls; it must then succeed.
	go func() {
		time.Sleep(50 * time.Millisecond)
		l.Release(ctx, first)
	}()

	second, err := l.Acquire(ctx, "shared", 2*time.Second)
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("second token reuses first token ID")
	}
	l.Release(ctx, second)
}

func TestRedisAcquireTimeout(t *testing.T) {
	l, _ := newTestRedisLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "held", time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer l.Release(ctx, token)

	start := time.Now()
	_, err = l.Acquire(ctx, "held", 100*time.Millisecond)
	if !errors.HasCode(err, errors.ErrCodeLockTimeout) {
		t.Fatalf("error = %v, want %v", err, errors.ErrCodeLockTimeout)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("timed out after %v, before the configured timeout", elapsed)
	}
}

func TestRedisAcquireContextCancelled(t *testing.T) {
	l, _ := newTestRedisLocker(t)

	token, err := l.Acquire(context.Background(), "held", time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer l.Release(context.Background(), token)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	if _, err := l.Acquire(ctx, "held", 5*time.Second); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRedisReleaseWrongToken(t *testing.T) {
	l, _ := newTestRedisLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "owned", time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	stale := &Token{Name: "owned", ID: "someone-else"}
	if err := l.Release(ctx, stale); err == nil {
		t.Fatal("Release with wrong token should fail")
	} else if !errors.HasCode(err, errors.ErrCodeConflict) {
		t.Errorf("error code = %v, want %v", err, errors.ErrCodeConflict)
	}

	// The real holder can still release.
	if err := l.Release(ctx, token); err != nil {
		t.Fatalf("Release by real holder failed: %v", err)
	}
}

func TestRedisReleaseAfterExpiry(t *testing.T) {
	l, mr := newTestRedisLocker(t)
	ctx := context.Background()

	token, err := l.Acquire(ctx, "ttl", time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Simulate TTL expiry plus re-grant to another holder.
	mr.Del("pipekit:lock:ttl")
	other, err := l.Acquire(ctx, "ttl", time.Second)
	if err != nil {
		t.Fatalf("re-acquire failed: %v", err)
	}

	// The expired holder must not free the new holder's lock.
	if err := l.Release(ctx, token); err == nil {
		t.Fatal("expired holder's Release should fail")
	}
	if err := l.Release(ctx, other); err != nil {
		t.Fatalf("new holder's Release failed: %v", err)
	}
}

func TestRedisComponentLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := RedisConfig{Enabled: true, Addr: mr.Addr()}
	c := NewComponent(cfg, logger.NewDefault("test"))
	ctx := context.Background()

	if c.Name() != "mutex" {
		t.Errorf("Name = %q", c.Name())
	}

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %v, want unhealthy", h.Status)
	}

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if c.Locker() == nil {
		t.Fatal("Locker is nil after Start")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health after Start = %v, want healthy", h.Status)
	}

	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
