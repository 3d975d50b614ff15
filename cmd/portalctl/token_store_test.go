package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	s := tokenStore{path: filepath.Join(t.TempDir(), "nested", "token.json")}

	got, err := s.Load()
	if err != nil || got != nil {
		t.Fatalf("empty store Load = %v, %v", got, err)
	}

	want := &storedToken{Token: "abc", ExpiresAt: time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), BaseURL: "http://localhost:8000"}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != want.Token || !got.ExpiresAt.Equal(want.ExpiresAt) || got.BaseURL != want.BaseURL {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if got, _ := s.Load(); got != nil {
		t.Errorf("Load after Clear = %+v", got)
	}
}
