package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/klauspost/compress/zstd"
)

// Format is an output encoding.
type Format string

const (
	CSV   Format = "csv"
	Arrow Format = "arrow"
)

// ParseFormat maps "csv" or "arrow" to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, Arrow:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want csv or arrow)", s)
}

// Write encodes record to w in the given format.
func Write(w io.Writer, record arrow.Record, f Format, compressBuffers bool) error {
	switch f {
	case CSV:
		return WriteCSV(w, record)
	case Arrow:
		return WriteIPC(w, record, compressBuffers)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteIPC writes record as an Arrow IPC stream. With compressBuffers the
// column buffers are zstd-compressed inside the stream.
func WriteIPC(w io.Writer, record arrow.Record, compressBuffers bool) error {
	opts := []ipc.Option{ipc.WithSchema(record.Schema())}
	if compressBuffers {
		opts = append(opts, ipc.WithZstd())
	}
	writer := ipc.NewWriter(w, opts...)
	defer writer.Close()

	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// WriteCSV writes record as CSV with a header row.
func WriteCSV(w io.Writer, record arrow.Record) error {
	writer := csv.NewWriter(w, record.Schema(), csv.WithHeader(true))
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// Compress wraps w in a zstd stream. Closing the returned writer flushes the
// final frame but does not close w.
func Compress(w io.Writer) (io.WriteCloser, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return enc, nil
}
