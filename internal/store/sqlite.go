// Package store streams embedding vectors out of a SQLite database so the
// trainer can sample them without loading the whole table.
//
// Embeddings are stored as blobs: a little-endian int32 length followed by
// that many little-endian float32 coordinates.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	_ "modernc.org/sqlite" // SQLite driver
)

// SampleSource reads embedding blobs from one table of a SQLite database.
type SampleSource struct {
	db     *sql.DB
	table  string
	column string
}

// Open opens the database at path and prepares to read table.column.
func Open(path, table, column string) (*SampleSource, error) {
	if path == "" {
		return nil, fmt.Errorf("store: database path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", path, err)
	}

	return &SampleSource{db: db, table: table, column: column}, nil
}

// Close releases the underlying database handle.
func (s *SampleSource) Close() error {
	return s.db.Close()
}

// Count returns the number of rows in the source table.
func (s *SampleSource) Count(ctx context.Context) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}

	return n, nil
}

// Stream decodes every embedding in the table and hands it to fn in row
// order. Vectors whose dimension differs from dim are skipped; fn errors
// and context cancellation stop the scan.
func (s *SampleSource) Stream(ctx context.Context, dim int, fn func(v []float32) error) error {
	query := fmt.Sprintf("SELECT %s FROM %s", s.column, s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("store: query %s: %w", s.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return fmt.Errorf("store: scan: %w", err)
		}

		vec, err := DecodeVector(blob)
		if err != nil {
			return err
		}
		if len(vec) != dim {
			continue
		}

		if err := fn(vec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// EncodeVector serializes a vector into the blob format.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4+4*len(v))
	binary.LittleEndian.PutUint32(buf, uint32(int32(len(v))))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(x))
	}

	return buf
}

// DecodeVector deserializes a blob into a vector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("store: vector blob too short: %d bytes", len(b))
	}

	n := int32(binary.LittleEndian.Uint32(b))
	if n < 0 || len(b) != int(4+4*n) {
		return nil, fmt.Errorf("store: malformed vector blob: length %d, %d bytes", n, len(b))
	}

	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4+4*i:]))
	}

	return vec, nil
}
