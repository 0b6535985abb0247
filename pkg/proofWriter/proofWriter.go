package proofWriter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

func (f Format) String() string {
	return string(f)
}

// ParseFormat converts a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCBOR:
		return Format(s), nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: %s, %s)", s, FormatJSON, FormatCBOR)
	}
}

// foundDocument and notFoundDocument keep the historical file shape: the proof key holds
// an array of hex strings, or the empty string when the key is not in the tree.
type foundDocument struct {
	Proof []string `json:"proof" cbor:"proof"`
}

type notFoundDocument struct {
	Proof string `json:"proof" cbor:"proof"`
}

// Document returns the serializable form of a proof result
func Document(result merkle.ProofResult) any {
	if !result.Found {
		return notFoundDocument{Proof: ""}
	}
	return foundDocument{Proof: result.ProofStrings()}
}

// Encode serializes a proof result in the given format
func Encode(result merkle.ProofResult, format Format) ([]byte, error) {
	doc := Document(result)

	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", " ")
	case FormatCBOR:
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("failed to create cbor encoder: %w", err)
		}
		return em.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteFile encodes result and writes it to path. The file is written to a temporary
// sibling and renamed into place, so a failed write leaves any previous file untouched.
func WriteFile(path string, result merkle.ProofResult, format Format) error {
	data, err := Encode(result, format)
	if err != nil {
		return errors.Wrapf(err, "failed to encode proof result for %s", path)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".proof-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmpPath)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return errors.Wrapf(err, "failed to set permissions on %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to move proof result to %s", path)
	}

	return nil
}
