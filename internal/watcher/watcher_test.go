package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/router-for-me/ProxyConfigUI/internal/store"
)

func TestWatcherReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	st := store.New(configPath, filepath.Join(dir, ".env"))
	if err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	w, err := New(st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	content := "providers:\n  - name: grok\n    type: grok\n    models: [grok-4]\n"
	if errWrite := os.WriteFile(configPath, []byte(content), 0o644); errWrite != nil {
		t.Fatalf("external write: %v", errWrite)
	}

	deadline := time.After(5 * time.Second)
	for {
		if snapshot := st.Config(); len(snapshot.Providers) == 1 && snapshot.Providers[0].Name == "grok" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("snapshot never reloaded after external write: %+v", st.Config().Providers)
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not stop on context cancel")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "config.yaml"), filepath.Join(dir, ".env"))
	if err := st.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, err := New(st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if errWrite := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); errWrite != nil {
		t.Fatalf("write unrelated file: %v", errWrite)
	}
	time.Sleep(500 * time.Millisecond)
	if snapshot := st.Config(); len(snapshot.Providers) != 0 {
		t.Fatalf("snapshot changed on unrelated file write: %+v", snapshot.Providers)
	}
}
