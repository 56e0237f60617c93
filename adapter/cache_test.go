package adapter

import (
	"errors"
	"testing"
	"time"
)

func TestStateCacheReplace(t *testing.T) {
	c := NewStateCache()

	if err := c.Replace(map[string]string{"power": "on", "bright": "80"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if v, ok := c.Get("power"); !ok || v != "on" {
		t.Fatalf("expected power=on, got %q (ok=%v)", v, ok)
	}

	// A new set replaces wholesale: keys absent from it disappear.
	if err := c.Replace(map[string]string{"power": "off"}); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	if _, ok := c.Get("bright"); ok {
		t.Fatal("stale key survived wholesale replace")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 key, got %d", c.Len())
	}
}

func TestStateCacheRejectsEmptySet(t *testing.T) {
	c := NewStateCache()
	if err := c.Replace(map[string]string{"power": "on"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	for _, empty := range []map[string]string{nil, {}} {
		if err := c.Replace(empty); !errors.Is(err, ErrEmptyProperties) {
			t.Fatalf("expected ErrEmptyProperties, got %v", err)
		}
	}
	if v, _ := c.Get("power"); v != "on" {
		t.Fatalf("rejected replace mutated cache: power=%q", v)
	}
}

func TestStateCacheUpdate(t *testing.T) {
	c := NewStateCache()
	if err := c.Replace(map[string]string{"power": "off"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	c.Update("power", "on")
	c.Update("ct", "4000")

	if v, _ := c.Get("power"); v != "on" {
		t.Fatalf("update lost: power=%q", v)
	}
	if v, _ := c.Get("ct"); v != "4000" {
		t.Fatalf("new key: ct=%q", v)
	}
}

func TestStateCacheSnapshotIsolation(t *testing.T) {
	c := NewStateCache()
	if err := c.Replace(map[string]string{"power": "on"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	snap := c.Snapshot()
	snap["power"] = "tampered"
	if v, _ := c.Get("power"); v != "on" {
		t.Fatalf("snapshot mutation reached cache: %q", v)
	}

	src := map[string]string{"power": "off"}
	if err := c.Replace(src); err != nil {
		t.Fatalf("replace: %v", err)
	}
	src["power"] = "tampered"
	if v, _ := c.Get("power"); v != "off" {
		t.Fatalf("caller map mutation reached cache: %q", v)
	}
}

func TestStateCachePollTimestamp(t *testing.T) {
	c := NewStateCache()
	if !c.LastPoll().IsZero() {
		t.Fatal("fresh cache has non-zero poll time")
	}

	now := time.Unix(1_700_000_000, 0)
	c.MarkPolled(now)
	if !c.LastPoll().Equal(now) {
		t.Fatalf("expected %v, got %v", now, c.LastPoll())
	}
}
