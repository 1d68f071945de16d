package mapview

import (
	"testing"

	"github.com/spotfinder/backend/internal/models"
)

func TestNewKeepsIconsIndependent(t *testing.T) {
	cfg := New("https://tiles/{z}/{x}/{y}.png", "osm", models.Coordinate{Latitude: -14.235, Longitude: -51.925}, 4, 500)
	if cfg.Icons.Existing.ClassName != "existing-marker" {
		t.Fatalf("expected existing-marker class, got %q", cfg.Icons.Existing.ClassName)
	}
	if cfg.Icons.Selected.ClassName != "" {
		t.Fatalf("selected icon must not carry a class")
	}

	cfg.Icons.Selected.IconURL = "changed"
	if DefaultIcon().IconURL == "changed" {
		t.Fatalf("default icon must not be shared state")
	}
	if cfg.Zoom != 4 || cfg.Center.Latitude != -14.235 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
