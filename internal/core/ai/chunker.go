package ai

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/guiyumin/vsub/internal/core/audio"
	"github.com/guiyumin/vsub/internal/core/vad"
)

// Chunk statuses recorded in the manifest.
const (
	ChunkPending     = "pending"
	ChunkTranscribed = "transcribed"
	ChunkFailed      = "failed"
)

// ManifestFileName is the manifest written next to the chunks.
const ManifestFileName = "manifest.json"

// ChunkInfo represents the audio of one group of speech regions.
type ChunkInfo struct {
	Index    int     `json:"index"`
	FilePath string  `json:"file"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Regions  int     `json:"regions"`
	Status   string  `json:"status"`
}

// Manifest stores metadata about the chunks cut from one input file.
type Manifest struct {
	RunID           string      `json:"run_id"`
	Source          string      `json:"source"`
	SourceHash      string      `json:"source_hash"`
	ChunksDir       string      `json:"chunks_dir"`
	CreatedAt       time.Time   `json:"created_at"`
	Strategy        string      `json:"strategy"`
	TotalDurSeconds float64     `json:"total_duration_seconds"`
	Chunks          []ChunkInfo `json:"chunks"`
}

// Count returns the number of chunks with the given status.
func (m *Manifest) Count(status string) int {
	n := 0
	for _, c := range m.Chunks {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Chunker cuts a converted WAV into one file per group.
type Chunker struct {
	dir string
}

// NewChunker creates a Chunker that writes into dir.
func NewChunker(dir string) *Chunker {
	return &Chunker{dir: dir}
}

// Split extracts every group of wavPath into its own WAV and writes the
// manifest. source is the input file, recorded for reference.
func (c *Chunker) Split(source, wavPath string, duration float64, groups []vad.Group) (*Manifest, error) {
	chunkDir := filepath.Join(c.dir, "chunks")
	if err := os.MkdirAll(chunkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	hash, err := calculateFileHash(source)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate file hash: %w", err)
	}

	chunks := make([]ChunkInfo, 0, len(groups))
	for i, g := range groups {
		chunkPath := filepath.Join(chunkDir, fmt.Sprintf("chunk_%03d.wav", i+1))
		if err := audio.ExtractChunk(wavPath, chunkPath, g.Start, g.End); err != nil {
			return nil, fmt.Errorf("failed to extract chunk %d: %w", i+1, err)
		}
		chunks = append(chunks, ChunkInfo{
			Index:    i + 1,
			FilePath: chunkPath,
			Start:    g.Start,
			End:      g.End,
			Regions:  len(g.Regions),
			Status:   ChunkPending,
		})
	}

	absPath, _ := filepath.Abs(source)
	manifest := &Manifest{
		RunID:           uuid.NewString(),
		Source:          absPath,
		SourceHash:      hash,
		ChunksDir:       chunkDir,
		CreatedAt:       time.Now(),
		Strategy:        "vad",
		TotalDurSeconds: duration,
		Chunks:          chunks,
	}
	if err := c.WriteManifest(manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	return manifest, nil
}

// calculateFileHash calculates SHA256 hash of a file (first 1MB for speed).
func calculateFileHash(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyN(h, f, 1024*1024); err != nil && err != io.EOF {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// WriteManifest writes the manifest into the chunk directory.
func (c *Chunker) WriteManifest(manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(manifest.ChunksDir, ManifestFileName), data, 0644)
}

// LoadManifest loads a manifest from the chunks directory.
func LoadManifest(chunksDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(chunksDir, ManifestFileName))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
