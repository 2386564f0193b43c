package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FileSource loads definitions from a content file. The format is picked
// from the extension: .yaml/.yml, .toml or .json. Every format holds a
// top-level "cards" list.
type FileSource struct {
	Fs   afero.Fs
	Path string
}

// NewFileSource reads from the OS filesystem.
func NewFileSource(path string) FileSource {
	return FileSource{Fs: afero.NewOsFs(), Path: path}
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs := s.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return DecodeContent(filepath.Ext(s.Path), data)
}

// DecodeContent parses content data in the format named by ext.
func DecodeContent(ext string, data []byte) ([]Definition, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml":
		defs, err := decodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return defs, nil
	case "toml":
		var file contentFile
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		return file.Cards, nil
	case "json":
		var file contentFile
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return file.Cards, nil
	default:
		return nil, fmt.Errorf("unsupported content format %q", ext)
	}
}
