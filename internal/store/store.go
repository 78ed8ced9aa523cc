// Package store holds the single shared document in memory and synchronises
// it with a DocumentStore: optimistic writes retried once after a fresh read,
// a local fallback file when the remote store is unavailable, and a daily
// snapshot of the document.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gamesense/app/internal/domain"
	"gamesense/app/internal/repository"
)

const (
	DefaultDocumentPath = "data/storage.json"
	DefaultBackupDir    = "data/backups"
	DefaultFallbackPath = "data/storage.local.json"

	backupDateLayout = "20060102"
)

// Options configures a Store.
type Options struct {
	DocumentPath string
	BackupDir    string
	FallbackPath string
	// Now is the clock used for the daily snapshot; defaults to time.Now.
	Now func() time.Time
}

// Store owns the in-memory document. All access goes through View and Update,
// which serialise on a single mutex.
type Store struct {
	mu       sync.Mutex
	docs     repository.DocumentStore
	opts     Options
	doc      *domain.Document
	revision string
	// detached is set when the remote document could not be decoded. Writes
	// then go to the local fallback only, leaving the remote copy intact.
	detached bool
}

// New creates a Store. docs may be nil, in which case the document lives only
// in the local fallback file.
func New(docs repository.DocumentStore, opts Options) *Store {
	if opts.DocumentPath == "" {
		opts.DocumentPath = DefaultDocumentPath
	}
	if opts.BackupDir == "" {
		opts.BackupDir = DefaultBackupDir
	}
	if opts.FallbackPath == "" {
		opts.FallbackPath = DefaultFallbackPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{docs: docs, opts: opts, doc: domain.NewDocument()}
}

// Load reads the document. It never fails because of the remote store: any
// remote problem degrades to the local fallback file. A remote document that
// is valid JSON but has values of the wrong type is never overwritten; the
// store keeps working from the fallback file until it is repaired.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = false

	if s.docs != nil {
		content, rev, err := s.docs.Get(ctx, s.opts.DocumentPath)
		switch {
		case err == nil:
			doc, decErr := domain.DecodeDocument(content)
			if errors.Is(decErr, domain.ErrDocumentShape) {
				log.Printf("ERROR: stored document %s could not be decoded, remote writes disabled: %v", s.opts.DocumentPath, decErr)
				s.detached = true
				break
			}
			if decErr != nil {
				log.Printf("WARN: stored document %s is not valid JSON, starting empty: %v", s.opts.DocumentPath, decErr)
				doc = domain.NewDocument()
			}
			s.doc, s.revision = doc, rev
			return nil
		case errors.Is(err, repository.ErrNotFound):
			base := domain.NewDocument()
			payload, encErr := base.Encode()
			if encErr != nil {
				return encErr
			}
			newRev, putErr := s.docs.Put(ctx, s.opts.DocumentPath, payload, "", "chore: init storage.json")
			if putErr == nil {
				log.Printf("INFO: initialised document %s", s.opts.DocumentPath)
				s.doc, s.revision = base, newRev
				return nil
			}
			log.Printf("WARN: document store init failed, using local fallback: %v", putErr)
		default:
			log.Printf("WARN: document store read failed, using local fallback: %v", err)
		}
	}

	doc, err := s.loadFallback()
	if err != nil {
		return err
	}
	s.doc, s.revision = doc, ""
	return nil
}

// Detached reports whether remote writes are disabled because the stored
// document could not be decoded.
func (s *Store) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func (s *Store) loadFallback() (*domain.Document, error) {
	content, err := os.ReadFile(s.opts.FallbackPath)
	if errors.Is(err, os.ErrNotExist) {
		doc := domain.NewDocument()
		if err := s.writeFallback(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fallback %s: %w", s.opts.FallbackPath, err)
	}
	doc, err := domain.DecodeDocument(content)
	if err != nil {
		log.Printf("WARN: fallback file %s is not valid JSON, starting empty: %v", s.opts.FallbackPath, err)
		return domain.NewDocument(), nil
	}
	return doc, nil
}

func (s *Store) writeFallback(doc *domain.Document) error {
	payload, err := doc.Encode()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.opts.FallbackPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create fallback dir: %w", err)
		}
	}
	if err := os.WriteFile(s.opts.FallbackPath, payload, 0o644); err != nil {
		return fmt.Errorf("write fallback %s: %w", s.opts.FallbackPath, err)
	}
	return nil
}

// View runs fn with the current document. fn must not retain or modify it.
func (s *Store) View(fn func(doc *domain.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Update applies fn to the document and persists the result. fn should
// validate before it mutates: when it returns an error nothing is saved.
func (s *Store) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		return err
	}
	if _, err := s.ensureBackupLocked(ctx); err != nil {
		log.Printf("WARN: daily backup failed: %v", err)
	}
	return s.saveLocked(ctx)
}

// Save persists the current document.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// saveLocked writes with the known revision; on any failure it reads a fresh
// revision and tries exactly once more. If that fails too the document goes
// to the local fallback file and the old revision is kept. Last write wins.
func (s *Store) saveLocked(ctx context.Context) error {
	payload, err := s.doc.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if s.docs == nil || s.detached {
		return s.writeFallback(s.doc)
	}

	rev, err := s.docs.Put(ctx, s.opts.DocumentPath, payload, s.revision, "chore: update storage.json")
	if err == nil {
		s.revision = rev
		return nil
	}
	log.Printf("WARN: document save failed (%v), retrying with a fresh revision", err)

	_, fresh, getErr := s.docs.Get(ctx, s.opts.DocumentPath)
	if getErr != nil && !errors.Is(getErr, repository.ErrNotFound) {
		// without a fresh revision the retry would be a create over an existing document
		err = fmt.Errorf("fresh read before retry: %w", getErr)
	} else {
		rev, err = s.docs.Put(ctx, s.opts.DocumentPath, payload, fresh, "chore: update storage.json (retry)")
		if err == nil {
			s.revision = rev
			return nil
		}
	}

	log.Printf("ERROR: document save retry failed, using local fallback for this session: %v", err)
	return s.writeFallback(s.doc)
}

// BackupPath returns the snapshot path for the given day.
func (s *Store) BackupPath(day time.Time) string {
	return path.Join(strings.Trim(s.opts.BackupDir, "/"), "storage-"+day.Format(backupDateLayout)+".json")
}

// EnsureDailyBackup writes today's snapshot if it was not taken yet and
// records the day in the document. It reports whether the marker changed.
// Calling it again on the same day is a no-op.
func (s *Store) EnsureDailyBackup(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.ensureBackupLocked(ctx)
	if err != nil || !changed {
		return changed, err
	}
	return true, s.saveLocked(ctx)
}

func (s *Store) ensureBackupLocked(ctx context.Context) (bool, error) {
	if s.docs == nil || s.detached {
		return false, nil
	}
	today := s.opts.Now()
	stamp := today.Format(backupDateLayout)
	if s.doc.LastBackup == stamp {
		return false, nil
	}

	backupPath := s.BackupPath(today)
	_, _, err := s.docs.Get(ctx, backupPath)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		payload, encErr := s.doc.Encode()
		if encErr != nil {
			return false, encErr
		}
		_, putErr := s.docs.Put(ctx, backupPath, payload, "", "backup: storage "+stamp)
		// a conflict means another writer created today's snapshot first
		if putErr != nil && !errors.Is(putErr, repository.ErrConflict) {
			return false, fmt.Errorf("write snapshot %s: %w", backupPath, putErr)
		}
		log.Printf("INFO: wrote daily snapshot %s", backupPath)
	case err != nil:
		return false, fmt.Errorf("check snapshot %s: %w", backupPath, err)
	}

	s.doc.LastBackup = stamp
	return true, nil
}

// Revision returns the revision token of the last successful remote write.
func (s *Store) Revision() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}
