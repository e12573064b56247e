package main

import (
	"testing"

	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/pkg/texture"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		name  string
		watch bool
	}{
		{"cpu", false},
		{"cpu with watcher", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Assets.Root = t.TempDir()
			cfg.Assets.Watch = tt.watch

			s, err := newSession(cfg)
			if err != nil {
				t.Fatalf("newSession failed: %v", err)
			}
			if s.Watching() != tt.watch {
				t.Errorf("Watching() = %v, want %v", s.Watching(), tt.watch)
			}
			if _, ok := s.creator.(*texture.ImageCreator); !ok || s.gpu != nil {
				t.Errorf("expected CPU textures without -gpu, got %T", s.creator)
			}

			s.Close()
			if s.Watching() {
				t.Error("Close should stop the watcher")
			}
		})
	}
}
