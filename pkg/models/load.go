package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Format returns the model format implied by the file extension: "stl",
// "obj", "gltf", "glb", or "" when unknown.
func Format(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl", ".obj", ".gltf", ".glb":
		return ext[1:]
	}
	return ""
}

// Load picks a loader from the file extension and loads path with its
// default settings.
func Load(path string) (*Mesh, error) {
	switch Format(path) {
	case "stl":
		return LoadSTL(path)
	case "obj":
		return LoadOBJ(path)
	case "gltf", "glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
}
