package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// record is one stored (id, vector, payload) triple. Records keep their
// insertion slot for the lifetime of the index so that equal-score search
// results come back in insertion order; an overwrite replaces the contents
// in place without moving the slot.
type record struct {
	id         string
	vec        []float32
	payload    map[string]string
	insertedAt time.Time
}

// MemoryIndex is an in-memory vector index using an exhaustive cosine
// similarity scan. O(N*D) per query; intended for corpora small enough
// that a brute-force scan beats the operational cost of a real ANN index.
type MemoryIndex struct {
	dimensions int // 0 until the first upsert establishes it
	records    []record
	byID       map[string]int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index. dimensions may be 0, in which
// case the first upserted vector establishes the dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		byID:       make(map[string]int),
	}, nil
}

// Upsert stores the record for id, replacing any existing record with the
// same id atomically. Returns ErrDimensionMismatch (index unchanged) when
// the vector length disagrees with the established dimension.
func (m *MemoryIndex) Upsert(ctx context.Context, id string, vec []float32, payload map[string]string) error {
	if id == "" {
		return fmt.Errorf("upsert: id must not be empty")
	}
	if len(vec) == 0 {
		return fmt.Errorf("upsert %q: %w: empty vector", id, ErrDimensionMismatch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimensions == 0 {
		m.dimensions = len(vec)
	} else if len(vec) != m.dimensions {
		return fmt.Errorf("upsert %q: %w: got %d, expected %d", id, ErrDimensionMismatch, len(vec), m.dimensions)
	}
	rec := record{
		id:         id,
		vec:        append([]float32(nil), vec...),
		payload:    copyPayload(payload),
		insertedAt: time.Now(),
	}
	if i, ok := m.byID[id]; ok {
		m.records[i] = rec
		return nil
	}
	m.byID[id] = len(m.records)
	m.records = append(m.records, rec)
	return nil
}

// Search returns the top-k records by cosine similarity to query, ties in
// insertion order. An empty index returns an empty result. Returns
// ErrDimensionMismatch when query length disagrees with the established
// dimension; the dimension is enforced even on an empty index, as long as
// it has been established.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dimensions != 0 && len(query) != m.dimensions {
		return nil, fmt.Errorf("search: %w: got %d, expected %d", ErrDimensionMismatch, len(query), m.dimensions)
	}
	if len(m.records) == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, nil
	}
	hits := make([]*SearchHit, len(m.records))
	for i, rec := range m.records {
		hits[i] = &SearchHit{
			ID:      rec.id,
			Score:   CosineSimilarity(query, rec.vec),
			Payload: copyPayload(rec.payload),
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Delete removes the record for id. Absent ids are a no-op.
func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return nil
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	delete(m.byID, id)
	for j := i; j < len(m.records); j++ {
		m.byID[m.records[j].id] = j
	}
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format (little endian): dimensions (4), n (4), then per record:
// idLen (4), id bytes, insertedAt unix nanos (8), payload pair count (4),
// per pair keyLen/key/valueLen/value, then vector (dimensions*4 bytes).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.records))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, rec := range m.records {
		if err := writeString(f, rec.id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, rec.insertedAt.UnixNano()); err != nil {
			return fmt.Errorf("write timestamp: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(len(rec.payload))); err != nil {
			return fmt.Errorf("write payload count: %w", err)
		}
		// Deterministic key order so identical indexes produce identical files.
		keys := make([]string, 0, len(rec.payload))
		for k := range rec.payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeString(f, k); err != nil {
				return fmt.Errorf("write payload key: %w", err)
			}
			if err := writeString(f, rec.payload[k]); err != nil {
				return fmt.Errorf("write payload value: %w", err)
			}
		}
		if _, err := f.Write(float32SliceToBytes(rec.vec)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// A missing file is not an error and leaves the index unchanged. When the
// index dimension is already established, the file's dimension must match.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dimensions != 0 && int(dim) != m.dimensions {
		return fmt.Errorf("load: %w: file has %d, index expects %d", ErrDimensionMismatch, dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	records := make([]record, 0, n)
	byID := make(map[string]int, n)
	vecBuf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		id, err := readString(f)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		var nanos int64
		if err := binary.Read(f, binary.LittleEndian, &nanos); err != nil {
			return fmt.Errorf("read timestamp: %w", err)
		}
		var pairs uint32
		if err := binary.Read(f, binary.LittleEndian, &pairs); err != nil {
			return fmt.Errorf("read payload count: %w", err)
		}
		payload := make(map[string]string, pairs)
		for j := uint32(0); j < pairs; j++ {
			k, err := readString(f)
			if err != nil {
				return fmt.Errorf("read payload key: %w", err)
			}
			v, err := readString(f)
			if err != nil {
				return fmt.Errorf("read payload value: %w", err)
			}
			payload[k] = v
		}
		if _, err := io.ReadFull(f, vecBuf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		byID[id] = len(records)
		records = append(records, record{
			id:         id,
			vec:        bytesToFloat32Slice(vecBuf),
			payload:    payload,
			insertedAt: time.Unix(0, nanos),
		})
	}
	m.dimensions = int(dim)
	m.records = records
	m.byID = byID
	return nil
}

// Size returns the number of records in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Dimensions returns the established dimension, 0 if no vector was
// inserted yet.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func copyPayload(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func writeString(f *os.File, s string) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := f.Write([]byte(s))
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
