package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known token ids from the demo set used by engine rules.
const (
	JadeGolemID = 500
	CoinID      = 508
	PlantID     = 524
)

//go:embed demo_cards.yaml
var demoCards []byte

// DemoSource serves the embedded demo card set.
type DemoSource struct{}

func (DemoSource) Name() string { return "demo" }

func (DemoSource) Load(ctx context.Context) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defs, err := decodeYAML(demoCards)
	if err != nil {
		return nil, fmt.Errorf("decode demo cards: %w", err)
	}
	return defs, nil
}

// contentFile is the on-disk layout shared by every file format.
type contentFile struct {
	Cards []Definition `json:"cards" yaml:"cards" toml:"cards"`
}

func decodeYAML(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file contentFile
	if err := dec.Decode(&file); err != nil {
		return nil, err
	}
	return file.Cards, nil
}
