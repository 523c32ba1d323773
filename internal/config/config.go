// Package config loads the YAML scene file shared by the gimbal commands.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/gimbal/pkg/camera"
	"github.com/taigrr/gimbal/pkg/math3d"
)

var (
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrInvalidCamera   = errors.New("invalid camera")
	ErrSchema          = errors.New("config does not match schema")
)

//go:embed schema.json
var schema []byte

// CameraConfig places the camera. Position and target are world points.
type CameraConfig struct {
	Position     [3]float32 `yaml:"position"`
	Target       [3]float32 `yaml:"target"`
	Up           [3]float32 `yaml:"up"`
	FOV          float32    `yaml:"fov"` // degrees, vertical
	Near         float32    `yaml:"near"`
	Far          float32    `yaml:"far"`
	Orthographic bool       `yaml:"orthographic"`
	OrthoHeight  float32    `yaml:"ortho_height"`
}

// ViewportConfig is the output size in pixels.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoggingConfig sets the log level and an optional log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // rotated log file; empty logs to stderr
}

// SnapshotConfig holds the orbit angles (degrees) and raster settings for
// the snapshot command.
type SnapshotConfig struct {
	Yaw         float32 `yaml:"yaw"`
	Pitch       float32 `yaml:"pitch"`
	Supersample int     `yaml:"supersample"`
	LineWidth   float64 `yaml:"line_width"`
}

// Config is the scene file.
type Config struct {
	Camera     CameraConfig   `yaml:"camera"`
	Viewport   ViewportConfig `yaml:"viewport"`
	EulerOrder string         `yaml:"euler_order"`
	Logging    LoggingConfig  `yaml:"logging"`
	Snapshot   SnapshotConfig `yaml:"snapshot"`
}

// Defaults returns the config used when no file is given: a 640x480
// perspective camera at (0, 0, 5) looking at the origin.
func Defaults() Config {
	return Config{
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 5},
			Up:          [3]float32{0, 1, 0},
			FOV:         60,
			Near:        0.1,
			Far:         100,
			OrthoHeight: 10,
		},
		Viewport:   ViewportConfig{Width: 640, Height: 480},
		EulerOrder: "ZXY",
		Logging:    LoggingConfig{Level: "info"},
		Snapshot:   SnapshotConfig{Yaw: 30, Pitch: 20, Supersample: 2, LineWidth: 0.5},
	}
}

// Load reads a scene file over the defaults. The file is checked against
// the embedded schema before it is decoded.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := validateSchema(data); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func validateSchema(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}

// Flags carries command line overrides. Zero values leave the config as is.
type Flags struct {
	Width, Height int
	FOV           float32
	Orthographic  bool
	EulerOrder    string
	LogLevel      string
	LogFile       string
}

// Resolve applies command line overrides.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Viewport.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Viewport.Height = flags.Height
	}
	if flags.FOV > 0 {
		c.Camera.FOV = flags.FOV
	}
	if flags.Orthographic {
		c.Camera.Orthographic = true
	}
	if flags.EulerOrder != "" {
		c.EulerOrder = flags.EulerOrder
	}
	if flags.LogLevel != "" {
		c.Logging.Level = strings.ToLower(flags.LogLevel)
	}
	if flags.LogFile != "" {
		c.Logging.File = flags.LogFile
	}
}

// Validate checks the values the schema cannot: cross-field constraints
// and anything set through Resolve.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, c.Viewport.Width, c.Viewport.Height)
	}
	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return fmt.Errorf("%w: fov %v outside (0, 180)", ErrInvalidCamera, cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("%w: need 0 < near < far, got %v and %v", ErrInvalidCamera, cam.Near, cam.Far)
	}
	if cam.Position == cam.Target {
		return fmt.Errorf("%w: position and target coincide", ErrInvalidCamera)
	}
	if cam.Up == ([3]float32{}) {
		return fmt.Errorf("%w: zero up vector", ErrInvalidCamera)
	}
	dir := vec3(cam.Target).Sub(vec3(cam.Position)).Normalized()
	if math3d.CrossProduct(vec3(cam.Up).Normalized(), dir).Magnitude() < 1e-4 {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	if _, err := c.Order(); err != nil {
		return err
	}
	return nil
}

// Order parses EulerOrder.
func (c Config) Order() (math3d.EulerOrder, error) {
	return math3d.ParseEulerOrder(c.EulerOrder)
}

// NewCamera builds the configured camera.
func (c Config) NewCamera() *camera.Camera {
	cc := c.Camera
	cam := camera.New(c.Viewport.Width, c.Viewport.Height)
	cam.SetPosition(vec3(cc.Position))
	cam.LookAt(vec3(cc.Target))
	cam.Up = vec3(cc.Up).Normalized()
	cam.SetFOV(math3d.Degrees(cc.FOV))
	cam.SetClipPlanes(cc.Near, cc.Far)
	cam.Orthographic = cc.Orthographic
	cam.OrthoHeight = cc.OrthoHeight
	return cam
}

func vec3(v [3]float32) math3d.Vector3d {
	return math3d.V3(v[0], v[1], v[2])
}
