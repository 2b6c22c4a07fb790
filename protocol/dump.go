package protocol

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Dump serializes b to disk as a two-tier artifact (spec.md §4.D.3):
// a main file at path holding the request array (with UPLOAD payload
// bytes elided), and one sidecar file per UPLOAD request, named
// "<path>.NNN" with a three-digit zero-padded counter starting at 001,
// holding that request's raw upload bytes.
func Dump(path string, b *Batch) error {
	reqs := make([]Request, len(b.requests))
	copy(reqs, b.requests)

	sidecar := 0
	for i := range reqs {
		if reqs[i].Action != ActionUpload {
			continue
		}
		sidecar++
		data := reqs[i].Content.Data
		if err := os.WriteFile(sidecarPath(path, sidecar), data, 0o644); err != nil {
			return fmt.Errorf("protocol: dump sidecar %d: %w", sidecar, err)
		}
		// The main file carries size/offset/box metadata but not the
		// raw bytes, which live in the sidecar.
		reqs[i].Content.Data = nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(reqs); err != nil {
		return fmt.Errorf("protocol: dump encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("protocol: dump main file: %w", err)
	}
	return nil
}

// Load reads a batch previously written by Dump. Every restored
// UPLOAD payload buffer is recorded in the returned batch's owned
// list, so Batch.Destroy frees it.
func Load(path string, alloc *IDAllocator) (*Batch, error) {
	main, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("protocol: load main file: %w", err)
	}
	var reqs []Request
	if err := gob.NewDecoder(bytes.NewReader(main)).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("protocol: load decode: %w", err)
	}

	b := NewBatch(alloc)
	sidecar := 0
	for i := range reqs {
		if reqs[i].Version != Version {
			return nil, fmt.Errorf("protocol: load: unsupported version %q (want %q)", reqs[i].Version, Version)
		}
		if reqs[i].Action != ActionUpload {
			continue
		}
		sidecar++
		data, err := os.ReadFile(sidecarPath(path, sidecar))
		if err != nil {
			return nil, fmt.Errorf("protocol: load sidecar %d: %w", sidecar, err)
		}
		reqs[i].Content.Data = data
		b.owned = append(b.owned, data)
	}
	b.requests = reqs
	return b, nil
}

func sidecarPath(path string, n int) string {
	return fmt.Sprintf("%s.%03d", path, n)
}
