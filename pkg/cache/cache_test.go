package cache

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key([]byte("doc"), "repair=false,m=1.22")
	b := Key([]byte("doc"), "repair=true,m=1.22")
	c := Key([]byte("other"), "repair=false,m=1.22")
	if a == b {
		t.Error("different options produced the same key")
	}
	if a == c {
		t.Error("different inputs produced the same key")
	}
	if a != Key([]byte("doc"), "repair=false,m=1.22") {
		t.Error("same input and options produced different keys")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	t.Run("MissWhenEmpty", func(t *testing.T) {
		if _, ok, err := c.Get(ctx, "nope"); err != nil || ok {
			t.Fatalf("Get = (ok=%t, err=%v), want miss", ok, err)
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "k", []byte("archive-bytes"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, ok, err := c.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("Get = (ok=%t, err=%v), want hit", ok, err)
		}
		if string(data) != "archive-bytes" {
			t.Fatalf("Get = %q, want archive-bytes", data)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		if err := c.Set(ctx, "ttl", []byte("x"), time.Nanosecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if _, ok, _ := c.Get(ctx, "ttl"); ok {
			t.Fatal("expired entry still served")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.Set(ctx, "gone", []byte("x"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := c.Get(ctx, "gone"); ok {
			t.Fatal("deleted entry still served")
		}
		// Deleting a missing key is not an error.
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatal("null cache returned a hit")
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	a := NewScoped(inner, "a:")
	b := NewScoped(inner, "b:")

	if err := a.Set(ctx, "k", []byte("from-a"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "k"); ok {
		t.Fatal("scoped caches leaked across prefixes")
	}
	if data, ok, _ := a.Get(ctx, "k"); !ok || string(data) != "from-a" {
		t.Fatal("scoped cache lost its own entry")
	}
}
