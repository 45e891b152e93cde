package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Encoding is the text syntax of a document.
type Encoding int

const (
	JSON Encoding = iota
	YAML
)

// Compression wraps the encoded document.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

// Format is how a document is laid out on disk.
type Format struct {
	Encoding    Encoding
	Compression Compression
}

// FormatFor picks the format from the file name, e.g. "net.yaml.zst".
func FormatFor(path string) Format {
	var f Format
	name := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(name) {
	case ".gz":
		f.Compression = Gzip
		name = strings.TrimSuffix(name, ".gz")
	case ".zst":
		f.Compression = Zstd
		name = strings.TrimSuffix(name, ".zst")
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		f.Encoding = YAML
	}
	return f
}

// Encode writes the network document to w.
func Encode(w io.Writer, n *domain.Network, format Format) error {
	doc, err := ToDocument(n)
	if err != nil {
		return err
	}
	return EncodeDocument(w, doc, format)
}

// EncodeDocument writes an already flattened document.
func EncodeDocument(w io.Writer, doc *Document, format Format) error {
	var closer io.Closer
	switch format.Compression {
	case Gzip:
		zw := gzip.NewWriter(w)
		w, closer = zw, zw
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}
		w, closer = zw, zw
	}

	var err error
	switch format.Encoding {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(doc)
		if err == nil {
			err = enc.Close()
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode network document: %w", err)
	}

	if closer != nil {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to flush compressed document: %w", err)
		}
	}
	return nil
}

// DecodeDocument reads a document without rebuilding the network.
func DecodeDocument(r io.Reader, format Format) (*Document, error) {
	switch format.Compression {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	var doc Document
	switch format.Encoding {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode network document: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode network document: %w", err)
		}
	}
	return &doc, nil
}

// Decode reads a document and rebuilds the network.
func Decode(r io.Reader, format Format, toolkit ports.Toolkit) (*domain.Network, error) {
	doc, err := DecodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, toolkit)
}

// Write stores the network at path atomically, replacing any existing file.
func Write(path string, n *domain.Network) error {
	doc, err := ToDocument(n)
	if err != nil {
		return err
	}
	return file.WriteAtomic(path, func(w io.Writer) error {
		return EncodeDocument(w, doc, FormatFor(path))
	})
}

// Read loads a network written by Write.
func Read(path string, toolkit ports.Toolkit) (*domain.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open network document: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFor(path), toolkit)
}

// EncodeTransformation serializes a single transformation as a one-edge document.
func EncodeTransformation(t *domain.Transformation) ([]byte, error) {
	doc, err := ToDocument(domain.NewNetwork("", []*domain.Transformation{t}))
	if err != nil {
		return nil, err
	}
	doc.Key = ""
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, doc, Format{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTransformation reverses EncodeTransformation.
func DecodeTransformation(data []byte, toolkit ports.Toolkit) (*domain.Transformation, error) {
	doc, err := DecodeDocument(bytes.NewReader(data), Format{})
	if err != nil {
		return nil, err
	}
	if len(doc.Transformations) != 1 {
		return nil, fmt.Errorf("%w: expected one transformation, got %d", ErrUnsupportedDocument, len(doc.Transformations))
	}
	n, err := FromDocument(doc, toolkit)
	if err != nil {
		return nil, err
	}
	return n.Transformations[0], nil
}
