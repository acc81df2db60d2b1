// Package index persists snapshot build artifacts so a restart can serve
// without re-embedding the catalog.
package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Artifact file names inside the index directory.
const (
	vectorsFile = "vectors.bin"
	metaFile    = "meta.json"
)

// vectorsMagic guards against loading a foreign or truncated file.
const vectorsMagic = uint32(0x4e434f56) // "NCOV"

// Meta describes the persisted vectors. Artifacts are only reused when the
// model and catalog shape still match.
type Meta struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Count      int       `json:"count"`
	BuiltAt    time.Time `json:"built_at"`
}

// ArtifactStore reads and writes snapshot artifacts under one directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates an ArtifactStore rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the artifact directory.
func (s *ArtifactStore) Dir() string { return s.dir }

// Save writes the vectors and their metadata atomically. Vectors are encoded
// little-endian as float32 after a magic/count/dimension header.
func (s *ArtifactStore) Save(vectors [][]float32, meta Meta) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index directory %s: %w", s.dir, err)
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	meta.Count = len(vectors)
	meta.Dimensions = dim

	if err := s.writeVectors(vectors, dim); err != nil {
		return err
	}
	return s.writeMeta(meta)
}

func (s *ArtifactStore) writeVectors(vectors [][]float32, dim int) error {
	tmp, err := os.CreateTemp(s.dir, ".vectors-*.bin")
	if err != nil {
		return fmt.Errorf("create temp vectors file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	header := [3]uint32{vectorsMagic, uint32(len(vectors)), uint32(dim)}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("write vectors header: %w", err)
		}
	}

	buf := make([]byte, 4)
	for i, vec := range vectors {
		if len(vec) != dim {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			if _, err := w.Write(buf); err != nil {
				tmp.Close()
				os.Remove(tmpName)
				return fmt.Errorf("write vector %d: %w", i, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flush vectors file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close vectors file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, vectorsFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace vectors file: %w", err)
	}
	return nil
}

func (s *ArtifactStore) writeMeta(meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index meta: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".meta-*.json")
	if err != nil {
		return fmt.Errorf("create temp meta file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write meta file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close meta file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, metaFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace meta file: %w", err)
	}
	return nil
}

// Load reads the persisted vectors and metadata. A missing artifact set
// returns os.ErrNotExist; a corrupt one returns a descriptive error.
func (s *ArtifactStore) Load() ([][]float32, Meta, error) {
	metaData, err := os.ReadFile(filepath.Join(s.dir, metaFile))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("read index meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, Meta{}, fmt.Errorf("parse index meta: %w", err)
	}

	f, err := os.Open(filepath.Join(s.dir, vectorsFile))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("open vectors file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header [3]uint32
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, Meta{}, fmt.Errorf("read vectors header: %w", err)
		}
	}
	if header[0] != vectorsMagic {
		return nil, Meta{}, fmt.Errorf("vectors file has bad magic %#x", header[0])
	}

	count, dim := int(header[1]), int(header[2])
	if count != meta.Count || dim != meta.Dimensions {
		return nil, Meta{}, fmt.Errorf(
			"vectors header (%d x %d) disagrees with meta (%d x %d)",
			count, dim, meta.Count, meta.Dimensions)
	}

	vectors := make([][]float32, count)
	buf := make([]byte, 4*dim)
	for i := range vectors {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, Meta{}, fmt.Errorf("read vector %d: %w", i, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		vectors[i] = vec
	}

	return vectors, meta, nil
}
