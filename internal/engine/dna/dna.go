// Package dna encodes and decodes DNA sequences: one elementID:filename entry
// per layer, joined by catalog.DNADelimiter, with an optional ?bypassDNA=true
// marker that excludes the entry from the uniqueness key.
package dna

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/louisbranch/dnaforge/internal/engine/catalog"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

const bypassOption = "bypassDNA"

// ErrMalformed indicates a DNA entry that cannot be decoded.
var ErrMalformed = apperrors.New(apperrors.CodeDNAMalformed, "malformed dna entry")

// ErrLayerMismatch indicates a sequence that does not line up with the layers.
var ErrLayerMismatch = apperrors.New(apperrors.CodeDNALayerMismatch, "dna does not match layers")

// Entry is one per-layer selection.
type Entry struct {
	ElementID int
	Filename  string
	BypassDNA bool
}

// String encodes the entry as elementID:filename[?bypassDNA=true].
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(e.ElementID))
	b.WriteByte(':')
	b.WriteString(e.Filename)
	if e.BypassDNA {
		b.WriteString(catalog.OptionsDelimiter + bypassOption + "=true")
	}
	return b.String()
}

// Sequence is an ordered list of entries, one per layer.
type Sequence []Entry

// String joins the entries with the DNA delimiter.
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, entry := range s {
		parts[i] = entry.String()
	}
	return strings.Join(parts, catalog.DNADelimiter)
}

// Key returns the uniqueness key of the sequence.
func (s Sequence) Key() string {
	return Key(s.String())
}

// Parse decodes a DNA string produced by Sequence.String.
func Parse(raw string) (Sequence, error) {
	if raw == "" {
		return nil, apperrors.WithMetadata(ErrMalformed.Code, "dna is empty", nil)
	}
	parts := strings.Split(raw, catalog.DNADelimiter)
	seq := make(Sequence, 0, len(parts))
	for _, part := range parts {
		entry, err := parseEntry(part)
		if err != nil {
			return nil, err
		}
		seq = append(seq, entry)
	}
	return seq, nil
}

func parseEntry(raw string) (Entry, error) {
	body, options := splitQuery(raw)
	idPart, filename, ok := strings.Cut(body, ":")
	if !ok || filename == "" {
		return Entry{}, apperrors.WithMetadata(ErrMalformed.Code, ErrMalformed.Message, map[string]string{"entry": raw})
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 0 {
		return Entry{}, apperrors.WithMetadata(ErrMalformed.Code, ErrMalformed.Message, map[string]string{"entry": raw})
	}
	return Entry{
		ElementID: id,
		Filename:  filename,
		BypassDNA: options[bypassOption] == "true",
	}, nil
}

// splitQuery separates an entry from its ?key=value&... options.
func splitQuery(raw string) (string, map[string]string) {
	body, query, ok := strings.Cut(raw, catalog.OptionsDelimiter)
	if !ok {
		return raw, nil
	}
	options := make(map[string]string)
	for _, setting := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(setting, "=")
		if key != "" {
			options[key] = value
		}
	}
	return body, options
}

// Key returns the uniqueness key of a DNA string: the entries carrying the
// bypassDNA marker are removed entirely.
func Key(raw string) string {
	parts := strings.Split(raw, catalog.DNADelimiter)
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		_, options := splitQuery(part)
		if options[bypassOption] == "true" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, catalog.DNADelimiter)
}

// Hash returns the hex SHA-1 digest of the full DNA string.
func Hash(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
