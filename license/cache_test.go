package license

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingValidator struct {
	calls    int
	decision Decision
	err      error
}

func (v *countingValidator) Validate(context.Context, string) (Decision, error) {
	v.calls++
	return v.decision, v.err
}

func TestCachedValidatorCachesDecisions(t *testing.T) {
	inner := &countingValidator{decision: Allow("v1")}
	cache := NewMemoryDecisionCache(time.Minute)
	defer cache.Close()
	v := NewCachedValidator(inner, cache)

	for i := 0; i < 3; i++ {
		d, err := v.Validate(context.Background(), "sk-aaa-bbb")
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if !d.Allowed || d.Scope != "v1" {
			t.Errorf("decision = %+v", d)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner validator called %d times, want 1", inner.calls)
	}
}

func TestCachedValidatorSkipsEmptyCredential(t *testing.T) {
	inner := &countingValidator{decision: Allow("v1")}
	cache := NewMemoryDecisionCache(time.Minute)
	defer cache.Close()
	v := NewCachedValidator(inner, cache)

	d, err := v.Validate(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if d.Allowed || d.Reason != ReasonNoKey {
		t.Errorf("decision = %+v", d)
	}
	if inner.calls != 0 {
		t.Errorf("inner validator called %d times, want 0", inner.calls)
	}
}

func TestCachedValidatorDoesNotCacheErrors(t *testing.T) {
	inner := &countingValidator{err: errors.New("registry down")}
	cache := NewMemoryDecisionCache(time.Minute)
	defer cache.Close()
	v := NewCachedValidator(inner, cache)

	for i := 0; i < 2; i++ {
		if _, err := v.Validate(context.Background(), "sk-aaa-bbb"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner validator called %d times, want 2", inner.calls)
	}
}

func TestMemoryDecisionCacheExpiry(t *testing.T) {
	cache := NewMemoryDecisionCache(10 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	key := CacheKey("sk-aaa-bbb")
	if err := cache.Put(ctx, key, Allow("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, key); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := cache.Get(ctx, key); ok {
		t.Error("expected miss after expiry")
	}
}

func TestMemoryDecisionCacheDel(t *testing.T) {
	cache := NewMemoryDecisionCache(time.Minute)
	defer cache.Close()
	ctx := context.Background()

	key := CacheKey("sk-aaa-bbb")
	if err := cache.Put(ctx, key, Allow("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Del(ctx, key); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, key); ok {
		t.Error("expected miss after delete")
	}
}

func TestCacheKeyHidesCredential(t *testing.T) {
	key := CacheKey("sk-aaa-secret")
	if key == "sk-aaa-secret" {
		t.Error("cache key must not be the raw credential")
	}
	if key != CacheKey("sk-aaa-secret") {
		t.Error("cache key must be deterministic")
	}
}
