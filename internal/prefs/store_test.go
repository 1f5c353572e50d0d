package prefs

import (
	"context"
	"testing"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{UserKey("telegram-42"), "user:telegram-42"},
		{ChannelKey("line-dm-u1"), "channel:line-dm-u1"},
		{ServerKey("g9"), "server:g9"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestMemoryAbsentVersusStored(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, ok, _ := store.Get(ctx, UserKey("u1")); ok {
		t.Fatal("empty store reported a value")
	}

	if err := store.Set(ctx, UserKey("u1"), "auto"); err != nil {
		t.Fatal(err)
	}

	val, ok, err := store.Get(ctx, UserKey("u1"))
	if err != nil || !ok || val != "auto" {
		t.Errorf("Get = (%q, %v, %v), want (auto, true, nil)", val, ok, err)
	}

	// Overwrite is last-write-wins.
	_ = store.Set(ctx, UserKey("u1"), "sea")

	val, _, _ = store.Get(ctx, UserKey("u1"))
	if val != "sea" {
		t.Errorf("after overwrite Get = %q, want sea", val)
	}
}
