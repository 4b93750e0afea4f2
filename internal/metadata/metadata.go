// Package metadata builds and writes the per-edition JSON documents of a
// collection in the Ethereum or Solana layout.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/louisbranch/dnaforge/internal/engine/dna"
	"github.com/louisbranch/dnaforge/internal/engine/sampler"
	"github.com/louisbranch/dnaforge/internal/generator"
)

// Network selects the metadata layout.
type Network string

const (
	NetworkEth Network = "eth"
	NetworkSol Network = "sol"
)

// DefaultCompiler is written to the compiler field of eth metadata.
const DefaultCompiler = "dnaforge"

// ParseNetwork resolves a network name; empty selects eth.
func ParseNetwork(raw string) (Network, error) {
	switch Network(raw) {
	case "", NetworkEth:
		return NetworkEth, nil
	case NetworkSol:
		return NetworkSol, nil
	default:
		return "", fmt.Errorf("unknown network %q", raw)
	}
}

// StartIndex returns the first edition number for the network.
func (n Network) StartIndex() int {
	if n == NetworkSol {
		return 0
	}
	return 1
}

// Creator is a Solana royalty recipient.
type Creator struct {
	Address string `json:"address" yaml:"address"`
	Share   int    `json:"share" yaml:"share"`
}

// SolanaConfig holds the collection fields used only by the sol layout.
type SolanaConfig struct {
	Symbol               string    `yaml:"symbol"`
	SellerFeeBasisPoints int       `yaml:"sellerFeeBasisPoints"`
	ExternalURL          string    `yaml:"externalUrl"`
	Creators             []Creator `yaml:"creators"`
}

// Config describes the collection.
type Config struct {
	Network     Network        `yaml:"-"`
	NamePrefix  string         `yaml:"namePrefix"`
	Description string         `yaml:"description"`
	BaseURI     string         `yaml:"baseUri"`
	Compiler    string         `yaml:"compiler"`
	Extra       map[string]any `yaml:"extraMetadata"`
	Solana      SolanaConfig   `yaml:"solana"`
}

// File is one entry of the sol properties.files list.
type File struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Properties is the sol properties object.
type Properties struct {
	Files    []File    `json:"files"`
	Category string    `json:"category"`
	Creators []Creator `json:"creators"`
}

// Metadata is one edition document. Fields that do not belong to the
// selected layout are left empty and omitted.
type Metadata struct {
	Name                 string              `json:"name"`
	Symbol               string              `json:"symbol,omitempty"`
	Description          string              `json:"description"`
	SellerFeeBasisPoints *int                `json:"seller_fee_basis_points,omitempty"`
	Image                string              `json:"image"`
	ExternalURL          string              `json:"external_url,omitempty"`
	DNA                  string              `json:"dna,omitempty"`
	Edition              int                 `json:"edition"`
	Date                 int64               `json:"date,omitempty"`
	Attributes           []sampler.Attribute `json:"attributes"`
	Properties           *Properties         `json:"properties,omitempty"`
	Compiler             string              `json:"compiler,omitempty"`

	// Extra holds collection-wide fields appended after the standard ones.
	// Keys that collide with a standard field are ignored.
	Extra map[string]any `json:"-"`
}

// Build returns the metadata document for record.
func (c Config) Build(record generator.EditionRecord) Metadata {
	attributes := record.Attributes
	if attributes == nil {
		attributes = []sampler.Attribute{}
	}
	name := c.NamePrefix + " #" + strconv.Itoa(record.Edition)
	image := strconv.Itoa(record.Edition) + ".png"

	if c.Network == NetworkSol {
		fee := c.Solana.SellerFeeBasisPoints
		creators := c.Solana.Creators
		if creators == nil {
			creators = []Creator{}
		}
		return Metadata{
			Name:                 name,
			Symbol:               c.Solana.Symbol,
			Description:          c.Description,
			SellerFeeBasisPoints: &fee,
			Image:                image,
			ExternalURL:          c.Solana.ExternalURL,
			Edition:              record.Edition,
			Attributes:           attributes,
			Properties: &Properties{
				Files:    []File{{URI: image, Type: "image/png"}},
				Category: "image",
				Creators: creators,
			},
			Extra: c.Extra,
		}
	}

	compiler := c.Compiler
	if compiler == "" {
		compiler = DefaultCompiler
	}
	return Metadata{
		Name:        name,
		Description: c.Description,
		Image:       c.BaseURI + "/" + image,
		DNA:         dna.Hash(record.DNA),
		Edition:     record.Edition,
		Date:        record.Timestamp.UnixMilli(),
		Attributes:  attributes,
		Compiler:    compiler,
		Extra:       c.Extra,
	}
}

// MarshalJSON encodes the standard fields followed by Extra in key order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type standard Metadata
	base, err := json.Marshal(standard(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}

	var reserved map[string]json.RawMessage
	if err := json.Unmarshal(base, &reserved); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m.Extra))
	for key := range m.Extra {
		if _, ok := reserved[key]; ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.Extra[key])
		if err != nil {
			return nil, fmt.Errorf("encode extra metadata %q: %w", key, err)
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
