package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/starter.yaml
var starterConfig []byte

// StarterConfig returns the commented config written by `confman init`
func StarterConfig() []byte {
	return append([]byte(nil), starterConfig...)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
