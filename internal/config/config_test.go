package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/gimbal/pkg/math3d"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	order, err := cfg.Order()
	if err != nil || order != math3d.LegacyEulerOrder {
		t.Errorf("Order() = %v, %v; want legacy order", order, err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
camera:
  position: [1, 2, 3]
  fov: 45
viewport:
  width: 800
euler_order: xyz
logging:
  level: debug
  file: gimbal.log
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Camera.Position != [3]float32{1, 2, 3} {
		t.Errorf("position = %v", cfg.Camera.Position)
	}
	if cfg.Camera.FOV != 45 {
		t.Errorf("fov = %v", cfg.Camera.FOV)
	}
	// Unset fields keep their defaults.
	if cfg.Viewport.Width != 800 || cfg.Viewport.Height != 480 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Camera.Far != 100 || cfg.Snapshot.Supersample != 2 {
		t.Errorf("defaults lost: far %v supersample %d", cfg.Camera.Far, cfg.Snapshot.Supersample)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "gimbal.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	order, err := cfg.Order()
	if err != nil || order != math3d.EulerXYZ {
		t.Errorf("Order() = %v, %v", order, err)
	}
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("Load(empty) = %+v, want defaults", cfg)
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	tests := []struct {
		name, body, field string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"short vector", "camera:\n  target: [1, 2]\n", "target"},
		{"zero width", "viewport:\n  width: 0\n", "width"},
		{"fractional height", "viewport:\n  height: 1.5\n", "height"},
		{"bad level", "logging:\n  level: loud\n", "level"},
		{"wide fov", "camera:\n  fov: 180\n", "fov"},
		{"steep pitch", "snapshot:\n  pitch: 95\n", "pitch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("Load() error = %v, want ErrSchema", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %q", err, tt.field)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	cfg := Defaults()
	cfg.Resolve(Flags{Height: 200, FOV: 90, Orthographic: true, EulerOrder: "YXZ", LogLevel: "WARNING"})
	if cfg.Viewport.Width != 640 || cfg.Viewport.Height != 200 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Camera.FOV != 90 || !cfg.Camera.Orthographic {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.EulerOrder != "YXZ" || cfg.Logging.Level != "warning" {
		t.Errorf("order %q level %q", cfg.EulerOrder, cfg.Logging.Level)
	}
	if cfg.Logging.File != "" {
		t.Errorf("empty flag overwrote log file: %q", cfg.Logging.File)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"negative width", func(c *Config) { c.Viewport.Width = -1 }, ErrInvalidViewport},
		{"zero fov", func(c *Config) { c.Camera.FOV = 0 }, ErrInvalidCamera},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }, ErrInvalidCamera},
		{"looking at itself", func(c *Config) { c.Camera.Target = c.Camera.Position }, ErrInvalidCamera},
		{"zero up", func(c *Config) { c.Camera.Up = [3]float32{} }, ErrInvalidCamera},
		{"top down with y up", func(c *Config) {
			c.Camera.Position = [3]float32{0, 5, 0}
			c.Camera.Up = [3]float32{0, 1, 0}
		}, ErrInvalidCamera},
		{"looking down -y with y up", func(c *Config) {
			c.Camera.Position = [3]float32{0, 5, 0}
			c.Camera.Up = [3]float32{0, -2, 0}
		}, ErrInvalidCamera},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	cfg := Defaults()
	cfg.Camera.Position = [3]float32{0, 5, 0}
	cfg.Camera.Up = [3]float32{0, 0, -1}
	if err := cfg.Validate(); err != nil {
		t.Errorf("top down camera with z up: Validate() = %v", err)
	}

	cfg = Defaults()
	cfg.EulerOrder = "XXY"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted euler order XXY")
	}
}

func TestNewCamera(t *testing.T) {
	cfg := Defaults()
	cfg.Camera.Position = [3]float32{0, 3, 4}
	cfg.Camera.FOV = 50
	cfg.Viewport = ViewportConfig{Width: 200, Height: 100}

	cam := cfg.NewCamera()
	if cam.Position != math3d.V3(0, 3, 4) || cam.Target != (math3d.Vector3d{}) {
		t.Errorf("camera at %v looking at %v", cam.Position, cam.Target)
	}
	if cam.Width != 200 || cam.Height != 100 || cam.AspectRatio() != 2 {
		t.Errorf("viewport %dx%d", cam.Width, cam.Height)
	}
	if cam.FOV.Degrees() != 50 || cam.Near != cfg.Camera.Near || cam.Far != cfg.Camera.Far {
		t.Errorf("fov %v near %v far %v", cam.FOV.Degrees(), cam.Near, cam.Far)
	}
	s, _, ok := cam.WorldToScreen(math3d.Vector3d{})
	if !ok || s.Sub(math3d.V2(100, 50)).Magnitude() > 1e-3 {
		t.Errorf("target projects to %v (visible %v), want screen center", s, ok)
	}
}
