package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "tekladoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "tekladoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogPath_UnderCacheBase(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := LogPath()
	want := filepath.Join("/custom/cache", "tekladoc", "tekladoc.log")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDataBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	got := dataBase()
	want := filepath.Join("/custom/data", "tekladoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDataBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")
	got := dataBase()
	// Should use os.TempDir() when HOME is unset
	if !strings.Contains(got, "tekladoc") {
		t.Errorf("expected tekladoc in path, got %q", got)
	}
}
