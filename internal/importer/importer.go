// Package importer turns evaluation files dropped into a watched directory
// into stored listings and evaluations.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/watcher"
)

// maxFileSize bounds a single import file.
const maxFileSize = 32 << 20

// ErrInvalidFile is returned for files that are not a usable evaluation file.
var ErrInvalidFile = errors.New("invalid import file")

// fingerprintSpace namespaces content fingerprints.
var fingerprintSpace = uuid.MustParse("6f1c2a8e-3b7d-4e51-9a0c-5d2f8b4e7c13")

// File is the on-disk import format.
type File struct {
	Name      string                `json:"name"`
	Source    string                `json:"source"`
	Original  []transcript.Segment  `json:"original"`
	Generated []transcript.Segment  `json:"generated"`
	Tags      []string              `json:"tags"`
	Model     string                `json:"model"`
	Critiques []transcript.Critique `json:"critiques"`
}

// Result describes what one import did.
type Result struct {
	BatchID      string
	Path         string
	ListingID    string
	EvaluationID string
	Updated      bool
	Unchanged    bool
}

type record struct {
	fingerprint uuid.UUID
	listingID   string
}

// Importer creates listings from files. Files are tracked by path so a
// rewritten file updates its listing instead of creating another.
type Importer struct {
	listings    *service.ListingService
	evaluations *service.EvaluationService
	logger      *slog.Logger

	mu       sync.Mutex
	imported map[string]record
}

// New creates an importer.
func New(listings *service.ListingService, evaluations *service.EvaluationService, logger *slog.Logger) *Importer {
	return &Importer{
		listings:    listings,
		evaluations: evaluations,
		logger:      logger.With("component", "importer"),
		imported:    make(map[string]record),
	}
}

// Run imports settled files from events until ctx is done or events closes.
// Failures are logged and the file is skipped.
func (i *Importer) Run(ctx context.Context, events <-chan watcher.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case watcher.EventAdded, watcher.EventModified:
				if _, err := i.ImportFile(ctx, event.Path); err != nil {
					i.logger.Warn("import skipped", "path", event.Path, "error", err)
				}
			case watcher.EventRemoved:
				i.Forget(event.Path)
			}
		}
	}
}

// ImportFile reads, validates and stores one file.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{BatchID: uuid.NewString(), Path: path}
	log := i.logger.With("batch_id", res.BatchID, "path", path)

	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	f, err := decodeFile(raw)
	if err != nil {
		return nil, err
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if f.Source == "" {
		f.Source = "import:" + filepath.Base(path)
	}

	fingerprint := uuid.NewSHA1(fingerprintSpace, raw)

	i.mu.Lock()
	prev, known := i.imported[path]
	i.mu.Unlock()

	if known && prev.fingerprint == fingerprint {
		res.ListingID = prev.listingID
		res.Unchanged = true
		log.Debug("import unchanged", "listing_id", prev.listingID)
		return res, nil
	}

	if known {
		res.ListingID, err = i.update(ctx, prev.listingID, f)
		if err == nil {
			res.Updated = true
		}
	}
	if !known || errors.Is(err, store.ErrNotFound) {
		res.ListingID, err = i.create(ctx, f)
	}
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	i.imported[path] = record{fingerprint: fingerprint, listingID: res.ListingID}
	i.mu.Unlock()

	if f.Critiques != nil {
		eval, err := i.evaluations.RecordEvaluation(ctx, res.ListingID, service.RecordEvaluationRequest{
			Model:     f.Model,
			Critiques: f.Critiques,
		})
		if err != nil {
			return nil, fmt.Errorf("record evaluation: %w", err)
		}
		res.EvaluationID = eval.ID
	}

	log.Info("file imported",
		"listing_id", res.ListingID,
		"evaluation_id", res.EvaluationID,
		"updated", res.Updated,
	)
	return res, nil
}

func (i *Importer) create(ctx context.Context, f *File) (string, error) {
	l, err := i.listings.CreateListing(ctx, service.CreateListingRequest{
		Name:      f.Name,
		Source:    f.Source,
		Original:  f.Original,
		Generated: f.Generated,
		Tags:      f.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("create listing: %w", err)
	}
	return l.ID, nil
}

func (i *Importer) update(ctx context.Context, listingID string, f *File) (string, error) {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	l, err := i.listings.UpdateListing(ctx, listingID, service.UpdateListingRequest{
		Name:      &f.Name,
		Source:    &f.Source,
		Original:  f.Original,
		Generated: f.Generated,
		Tags:      tags,
	})
	if err != nil {
		return "", fmt.Errorf("update listing: %w", err)
	}
	return l.ID, nil
}

// Forget drops the path so a later file at the same path creates a new listing.
func (i *Importer) Forget(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.imported, path)
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat import file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidFile, info.Size(), maxFileSize)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return raw, nil
}

func decodeFile(raw []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if f.Original == nil || f.Generated == nil {
		return nil, fmt.Errorf("%w: original and generated are required", ErrInvalidFile)
	}
	return &f, nil
}
