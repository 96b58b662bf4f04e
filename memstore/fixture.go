package memstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/quarry/model"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the framing of a fixture stream.
type Compression uint8

const (
	// CompressionNone reads plain JSON lines.
	CompressionNone Compression = iota
	// CompressionZstd reads a zstd stream.
	CompressionZstd
	// CompressionLZ4 reads an lz4 frame stream.
	CompressionLZ4
)

// String returns the string representation of a Compression.
func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionFromPath derives the compression from a file extension.
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// FixtureRecord is one line of a fixture file.
type FixtureRecord struct {
	ID       uint64              `json:"id"`
	Keywords map[string][]string `json:"keywords,omitempty"`
	Texts    map[string]string   `json:"texts,omitempty"`
	Ints     map[string]int64    `json:"ints,omitempty"`
	Floats   map[string]float64  `json:"floats,omitempty"`
}

// Document converts the record into a Document.
func (r FixtureRecord) Document() *Document {
	doc := NewDocument()
	for f, terms := range r.Keywords {
		doc.Keyword(f, terms...)
	}
	for f, text := range r.Texts {
		doc.Text(f, text)
	}
	for f, v := range r.Ints {
		doc.Int(f, v)
	}
	for f, v := range r.Floats {
		doc.Float(f, v)
	}
	return doc
}

// OpenFixture loads a fixture file. Files ending in .zst/.zstd or .lz4 are
// decompressed on the fly.
func OpenFixture(path string, optFns ...Option) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ix, err := LoadJSONL(f, CompressionFromPath(path), optFns...)
	if err != nil {
		return nil, fmt.Errorf("loading fixture %s: %w", path, err)
	}
	return ix, nil
}

// LoadJSONL builds an Index from a stream of JSON records.
func LoadJSONL(r io.Reader, c Compression, optFns ...Option) (*Index, error) {
	var src io.Reader
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		src = dec
	case CompressionLZ4:
		src = lz4.NewReader(r)
	default:
		src = r
	}

	b := NewBuilder(optFns...)
	jd := json.NewDecoder(bufio.NewReader(src))
	for line := 1; ; line++ {
		var rec FixtureRecord
		if err := jd.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		if err := b.Add(model.EntryID(rec.ID), rec.Document()); err != nil {
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
	}
	return b.Build()
}

// WriteJSONL writes records as JSON lines using the given compression.
func WriteJSONL(w io.Writer, records []FixtureRecord, c Compression) error {
	var (
		dst    io.Writer
		closer io.Closer
	)
	switch c {
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		dst, closer = enc, enc
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		dst, closer = zw, zw
	default:
		dst = w
	}

	je := json.NewEncoder(dst)
	for _, rec := range records {
		if err := je.Encode(rec); err != nil {
			if closer != nil {
				_ = closer.Close()
			}
			return err
		}
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
