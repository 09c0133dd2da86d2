package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T, vectors [][]float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE embeddings (id INTEGER PRIMARY KEY, vector BLOB NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	for _, v := range vectors {
		if _, err := db.Exec(`INSERT INTO embeddings (vector) VALUES (?)`, EncodeVector(v)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	return path
}

func TestStreamReadsAllVectors(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	path := newTestDB(t, vectors)

	src, err := Open(path, "embeddings", "vector")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	n, err := src.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}

	var got [][]float32
	err = src.Stream(context.Background(), 3, func(v []float32) error {
		cp := make([]float32, len(v))
		copy(cp, v)
		got = append(got, cp)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("streamed %d vectors, want 3", len(got))
	}
	for i, want := range vectors {
		for d := range want {
			if got[i][d] != want[d] {
				t.Errorf("vector %d = %v, want %v", i, got[i], want)
			}
		}
	}
}

func TestStreamSkipsWrongDimension(t *testing.T) {
	path := newTestDB(t, [][]float32{
		{1, 2},
		{1, 2, 3},
		{4, 5},
	})

	src, err := Open(path, "embeddings", "vector")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	count := 0
	err = src.Stream(context.Background(), 2, func(v []float32) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if count != 2 {
		t.Errorf("streamed %d vectors of dimension 2, want 2", count)
	}
}

func TestStreamStopsOnCallbackError(t *testing.T) {
	path := newTestDB(t, [][]float32{{1}, {2}, {3}})

	src, err := Open(path, "embeddings", "vector")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	calls := 0
	err = src.Stream(context.Background(), 1, func(v []float32) error {
		calls++
		if calls == 2 {
			return context.Canceled
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected callback error to propagate")
	}
	if calls != 2 {
		t.Errorf("callback ran %d times, want 2", calls)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", "embeddings", "vector"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestDecodeVectorMalformed(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2}); err == nil {
		t.Error("expected error for truncated blob")
	}

	// Length prefix larger than the payload.
	blob := EncodeVector([]float32{1, 2, 3})
	if _, err := DecodeVector(blob[:8]); err == nil {
		t.Error("expected error for inconsistent length")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := []float32{0.5, -1.25, 3e7, 0}
	got, err := DecodeVector(EncodeVector(want))
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("coordinate %d = %f, want %f", i, got[i], want[i])
		}
	}
}
