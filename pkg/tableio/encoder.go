package tableio

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// Format is a persistent table format.
type Format string

const (
	Parquet Format = "parquet"
	CSV     Format = "csv"
)

// ParseFormat accepts "parquet" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case Parquet:
		return Parquet, nil
	case CSV:
		return CSV, nil
	default:
		return "", fmt.Errorf("unsupported table format %q", s)
	}
}

// encoder writes one record as one data file.
type encoder interface {
	extension() string
	encode(w io.Writer, rec arrow.Record) error
}

type parquetEncoder struct {
	codec compress.Compression
	name  string
}

var codecs = map[string]compress.Compression{
	"none":         compress.Codecs.Uncompressed,
	"uncompressed": compress.Codecs.Uncompressed,
	"snappy":       compress.Codecs.Snappy,
	"gzip":         compress.Codecs.Gzip,
	"zstd":         compress.Codecs.Zstd,
}

func newParquetEncoder(compression string) (*parquetEncoder, error) {
	name := strings.ToLower(compression)
	if name == "" {
		name = "snappy"
	}
	codec, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unsupported parquet compression %q", compression)
	}
	if name == "uncompressed" {
		name = "none"
	}
	return &parquetEncoder{codec: codec, name: name}, nil
}

func (e *parquetEncoder) extension() string {
	if e.name == "none" {
		return ".parquet"
	}
	return "." + e.name + ".parquet"
}

func (e *parquetEncoder) encode(w io.Writer, rec arrow.Record) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(e.codec))
	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("parquet write: %w", err)
	}
	return fw.Close()
}

type csvEncoder struct {
	comma rune
}

func (e *csvEncoder) extension() string { return ".csv" }

func (e *csvEncoder) encode(w io.Writer, rec arrow.Record) error {
	cw := csv.NewWriter(w, rec.Schema(),
		csv.WithComma(e.comma),
		csv.WithHeader(true),
		csv.WithNullWriter(""),
	)
	if err := cw.Write(rec); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	return cw.Flush()
}
