// Package data provides machine-readable output in json, yaml and toml
package data

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/ui/view"
)

// Encoding selects the serialization
type Encoding string

const (
	JSON Encoding = "json"
	YAML Encoding = "yaml"
	TOML Encoding = "toml"
)

// Renderer serializes views for machine consumption
type Renderer struct {
	output   io.Writer
	encoding Encoding
}

// New creates a structured renderer writing enc to output
func New(output io.Writer, enc Encoding) *Renderer {
	return &Renderer{output: output, encoding: enc}
}

// RenderRun serializes a run
func (r *Renderer) RenderRun(run *view.Run) error {
	return r.encode(run)
}

// RenderInfo serializes a configuration summary
func (r *Renderer) RenderInfo(info *view.Info) error {
	return r.encode(info)
}

type errorDoc struct {
	Error   string                 `json:"error" yaml:"error" toml:"error"`
	Code    string                 `json:"code" yaml:"code" toml:"code"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty" toml:"details,omitempty"`
}

// RenderError serializes an error with its code
func (r *Renderer) RenderError(err error) error {
	return r.encode(errorDoc{
		Error:   err.Error(),
		Code:    string(errors.GetErrorCode(err)),
		Details: errors.GetErrorDetails(err),
	})
}

type messageDoc struct {
	Message string `json:"message" yaml:"message" toml:"message"`
}

// RenderMessage serializes a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.encode(messageDoc{Message: msg})
}

func (r *Renderer) encode(v interface{}) error {
	var err error
	switch r.encoding {
	case YAML:
		enc := yaml.NewEncoder(r.output)
		enc.SetIndent(2)
		err = enc.Encode(v)
		if err == nil {
			err = enc.Close()
		}
	case TOML:
		err = toml.NewEncoder(r.output).Encode(v)
	default:
		enc := json.NewEncoder(r.output)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot encode %s output", r.encoding)
	}
	return nil
}
