package memorylimiter

import (
	"testing"
	"time"
)

func TestAllowNamedWithinLimit(t *testing.T) {
	l := New(map[string]Limit{"recipes.get": {Limit: 3, Window: time.Minute}})
	for i := 0; i < 3; i++ {
		ok, err := l.AllowNamed("recipes.get", "client-a")
		if err != nil {
			t.Fatalf("AllowNamed: %v", err)
		}
		if !ok {
			t.Fatalf("request %d denied under limit", i+1)
		}
	}
	ok, err := l.AllowNamed("recipes.get", "client-a")
	if err != nil {
		t.Fatalf("AllowNamed: %v", err)
	}
	if ok {
		t.Error("request over limit allowed")
	}
}

func TestAllowNamedIsolatesKeys(t *testing.T) {
	l := New(map[string]Limit{"recipes.get": {Limit: 1, Window: time.Minute}})
	if ok, _ := l.AllowNamed("recipes.get", "client-a"); !ok {
		t.Fatal("first request denied")
	}
	if ok, _ := l.AllowNamed("recipes.get", "client-b"); !ok {
		t.Error("different key should not share budget")
	}
	if ok, _ := l.AllowNamed("recipes.list", "client-a"); !ok {
		t.Error("different bucket should not share budget")
	}
}

func TestAllowNamedFallsBackToDefault(t *testing.T) {
	l := New(map[string]Limit{"default": {Limit: 1, Window: time.Minute}})
	if ok, _ := l.AllowNamed("unknown.op", "client-a"); !ok {
		t.Fatal("first request denied")
	}
	if ok, _ := l.AllowNamed("unknown.op", "client-a"); ok {
		t.Error("default limit not applied")
	}
}

func TestAllowNamedValidation(t *testing.T) {
	l := New(nil)
	if _, err := l.AllowNamed("", "key"); err == nil {
		t.Error("empty bucket should error")
	}
	if _, err := l.AllowNamed("bucket", ""); err == nil {
		t.Error("empty key should error")
	}
}
