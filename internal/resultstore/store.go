package resultstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vecma/uqpost/internal/models"
)

// Extension is appended to the campaign ID to name a stored result.
const Extension = ".result.json.zst"

// Store persists analysis results as zstd-compressed JSON, one file per campaign.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// Save writes result under campaignID, replacing any previous result.
// The file is written to a temporary name and renamed into place.
func (s *Store) Save(campaignID string, result *models.AnalysisResult) error {
	if err := checkID(campaignID); err != nil {
		return err
	}
	if result == nil {
		return errors.New("result is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating result directory: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	_ = enc.Close()

	tmp, err := os.CreateTemp(s.dir, "."+campaignID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary result file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing result file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing result file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(campaignID)); err != nil {
		return fmt.Errorf("renaming result file: %w", err)
	}

	slog.Debug("saved analysis result", "campaign", campaignID, "bytes", len(compressed), "raw_bytes", len(data))
	return nil
}

// Load reads the result stored under campaignID. A missing entry returns
// models.ErrResultNotFound.
func (s *Store) Load(campaignID string) (*models.AnalysisResult, error) {
	if err := checkID(campaignID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	compressed, err := os.ReadFile(s.path(campaignID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q in %s", models.ErrResultNotFound, campaignID, s.dir)
		}
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing result %q: %w", campaignID, err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result %q: %w", campaignID, err)
	}
	return &result, nil
}

// List returns the campaign IDs with a stored result, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading result directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Extension) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, Extension))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) path(campaignID string) string {
	return filepath.Join(s.dir, campaignID+Extension)
}

func checkID(campaignID string) error {
	if campaignID == "" || campaignID == "." || campaignID == ".." ||
		strings.ContainsAny(campaignID, `/\`) || strings.HasPrefix(campaignID, ".") {
		return fmt.Errorf("%w: campaign id %q cannot be used as a file name", models.ErrInvalidCampaign, campaignID)
	}
	return nil
}
