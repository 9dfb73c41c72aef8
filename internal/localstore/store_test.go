package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "localstore.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set(KeySystemName, "VeloeraCE"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok := s.Get(KeySystemName)
	if !ok || v != "VeloeraCE" {
		t.Errorf("Get = %q, %v; want VeloeraCE, true", v, ok)
	}

	// Reopen from disk; value survives.
	s2, err := Open(s.path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if v, _ := s2.Get(KeySystemName); v != "VeloeraCE" {
		t.Errorf("persisted value = %q", v)
	}
}

func TestGetBool(t *testing.T) {
	s := openTestStore(t)

	if s.GetBool(KeyHideHeaderLogo) {
		t.Error("absent key should be false")
	}
	if err := s.SetBool(KeyHideHeaderLogo, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if !s.GetBool(KeyHideHeaderLogo) {
		t.Error("SetBool(true) not readable")
	}
	if err := s.Set(KeyHideHeaderText, "not-a-bool"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if s.GetBool(KeyHideHeaderText) {
		t.Error("unparseable value should be false")
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set(KeyUser, "7"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(KeyUser); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(KeyUser); ok {
		t.Error("deleted key still present")
	}
}

func TestSubscribeSeesLocalWrites(t *testing.T) {
	s := openTestStore(t)

	changed := make(chan string, 4)
	if err := s.Subscribe(func(key string) { changed <- key }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := s.Set(KeyNotice, "maintenance at noon"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	select {
	case key := <-changed:
		if key != KeyNotice {
			t.Errorf("notified key = %q, want %q", key, KeyNotice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification for local write")
	}
}

func TestSubscribeSeesExternalWrites(t *testing.T) {
	s := openTestStore(t)

	changed := make(chan string, 4)
	if err := s.Subscribe(func(key string) { changed <- key }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Simulate another process rewriting the file.
	data := []byte(`{"theme-mode": "dark"}`)
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case key := <-changed:
			if key == KeyThemeMode {
				if v, _ := s.Get(KeyThemeMode); v != "dark" {
					t.Errorf("reloaded value = %q, want dark", v)
				}
				return
			}
		case <-deadline:
			t.Fatal("no notification for external write")
		}
	}
}
