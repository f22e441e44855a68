// Package publish writes compiled artifacts where a host can serve them and
// records each publication.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/logger"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/metrics"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/pipeline"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/store"
)

var formIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidFormID reports whether id is safe to use as a directory name.
func ValidFormID(id string) bool {
	return formIDPattern.MatchString(id) && id != "." && id != ".."
}

// Publisher places an artifact and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, formID string, a *compiler.Artifact) (string, error)
}

// DirPublisher writes artifacts to <Root>/<form-id>/<hash>/. A directory
// is immutable once written since its name is the hash of its files.
type DirPublisher struct {
	Root string
}

// Publish implements Publisher. Files are written to a temporary directory
// and renamed into place so readers never see a partial artifact.
func (d DirPublisher) Publish(_ context.Context, formID string, a *compiler.Artifact) (string, error) {
	if !ValidFormID(formID) {
		return "", fmt.Errorf("publish: invalid form id %q", formID)
	}
	formDir := filepath.Join(d.Root, formID)
	dir := filepath.Join(formDir, a.Hash)
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	if err := os.MkdirAll(formDir, 0o755); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}

	tmp, err := os.MkdirTemp(formDir, ".tmp-")
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	defer os.RemoveAll(tmp)

	files := a.Files()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(tmp, name), files[name], 0o644); err != nil {
			return "", fmt.Errorf("publish %s: %w", name, err)
		}
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return dir, nil
}

// Outcome describes one Service.Publish call.
type Outcome struct {
	Publication store.Publication
	Superseded  *store.Publication
	Result      *pipeline.Result

	// Unchanged is set when the live publication already has this hash;
	// no new publication is recorded then.
	Unchanged bool
}

// Service publishes stored records.
type Service struct {
	Store     *store.Store
	Pipeline  *pipeline.Pipeline
	Publisher Publisher
	Log       logger.Logger
}

// Publish builds the latest record of formID, writes it and records the
// publication.
func (s *Service) Publish(ctx context.Context, formID string) (*Outcome, error) {
	rec, err := s.Store.LatestRecord(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", formID, err)
	}
	res, err := s.Pipeline.Build(ctx, rec.Data)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", formID, err)
	}
	log := s.log().With(logger.Fields{"form_id": formID, "hash": res.Artifact.Hash, "revision": rec.Revision})

	live, err := s.Store.LatestPublication(ctx, formID)
	switch {
	case err == nil && live.Hash == res.Artifact.Hash:
		log.Info("publication unchanged", nil)
		return &Outcome{Publication: live, Result: res, Unchanged: true}, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("publish %s: %w", formID, err)
	}

	dir, err := s.Publisher.Publish(ctx, formID, res.Artifact)
	if err != nil {
		return nil, err
	}
	pub, prev, err := s.Store.RecordPublication(ctx, store.Publication{
		FormID:   formID,
		Revision: rec.Revision,
		Hash:     res.Artifact.Hash,
		Dir:      dir,
	})
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", formID, err)
	}
	metrics.PublicationsTotal.Inc()
	log.Info("published", logger.Fields{"dir": dir, "seq": pub.Seq})
	return &Outcome{Publication: pub, Superseded: prev, Result: res}, nil
}

func (s *Service) log() logger.Logger {
	if s.Log == nil {
		return logger.NewNoOpLogger()
	}
	return s.Log
}
