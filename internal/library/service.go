package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sheasmith19/ezapp/internal/layout"
	"github.com/sheasmith19/ezapp/internal/metrics"
	"github.com/sheasmith19/ezapp/internal/pdf"
	"github.com/sheasmith19/ezapp/internal/resume"
	"github.com/sheasmith19/ezapp/internal/storage"
	"github.com/sheasmith19/ezapp/internal/versioning"
)

// ErrNotFound means no stored résumé matches the requested key.
var ErrNotFound = errors.New("resume not found")

// Service owns the save/list/get/delete lifecycle of a user's résumés.
type Service struct {
	store     storage.Store
	committer versioning.Committer
	mirror    storage.Mirror
	logger    *slog.Logger
}

// NewService wires the facade. committer and mirror may be nil.
func NewService(store storage.Store, committer versioning.Committer, mirror storage.Mirror, logger *slog.Logger) *Service {
	if committer == nil {
		committer = versioning.NopCommitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, committer: committer, mirror: mirror, logger: logger}
}

// SaveResult reports where a save landed.
type SaveResult struct {
	Key        string
	XMLPath    string
	PDFPath    string
	Committed  bool
	CommitHash string

	// Substituted lists the characters drawn as a base letter or '?' in the PDF.
	Substituted string
}

// Entry is one row of the lightweight listing.
type Entry struct {
	Name     string    `json:"name"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DeleteResult lists the files a delete removed, relative to the user root.
type DeleteResult struct {
	Key          string
	DeletedFiles []string
}

// Save parses the XML, renders it and stores both artifacts under the normalized key.
// When margins is non-nil it replaces the document's margins and the canonical XML is stored instead of xmlText.
// Nothing is written when parsing, validation or rendering fails.
func (s *Service) Save(ctx context.Context, userID, displayName, xmlText string, margins *resume.Margins) (SaveResult, error) {
	key, err := resume.NormalizeKey(displayName)
	if err != nil {
		return SaveResult{}, err
	}
	doc, err := resume.Parse(xmlText)
	if err != nil {
		return SaveResult{}, err
	}

	stored := []byte(xmlText)
	if margins != nil {
		doc.Margins = *margins
	}
	if err := doc.Margins.Validate(); err != nil {
		return SaveResult{}, err
	}
	if margins != nil {
		if stored, err = resume.Encode(doc); err != nil {
			return SaveResult{}, fmt.Errorf("encode resume: %w", err)
		}
	}

	start := time.Now()
	rendered, err := pdf.Render(layout.Build(doc), doc.Margins)
	metrics.ObserveRender(time.Since(start), err)
	if err != nil {
		return SaveResult{}, err
	}
	pdfBytes := rendered.PDF
	if len(rendered.Substituted) > 0 {
		s.logger.Warn("substituted characters the PDF fonts cannot draw",
			slog.String("user_id", userID),
			slog.String("key", key),
			slog.String("characters", string(rendered.Substituted)),
		)
	}

	xmlPath, err := s.store.Write(ctx, userID, storage.KindXML, key, stored)
	if err != nil {
		return SaveResult{}, err
	}
	pdfPath, err := s.store.Write(ctx, userID, storage.KindPDF, key, pdfBytes)
	if err != nil {
		return SaveResult{}, err
	}

	s.mirrorPut(ctx, userID, key, storage.KindXML, stored)
	s.mirrorPut(ctx, userID, key, storage.KindPDF, pdfBytes)

	res := SaveResult{Key: key, XMLPath: xmlPath, PDFPath: pdfPath, Substituted: string(rendered.Substituted)}
	res.CommitHash, res.Committed = s.commit(ctx, userID, []string{xmlPath, pdfPath}, "Update resume: "+key+storage.KindPDF.Ext())
	return res, nil
}

// List returns the user's PDF file names in sorted order.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	files, err := s.store.List(ctx, userID, storage.KindPDF)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names, nil
}

// Entries returns the PDF listing with size and modification time.
func (s *Service) Entries(ctx context.Context, userID string) ([]Entry, error) {
	files, err := s.store.List(ctx, userID, storage.KindPDF)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(files))
	for _, f := range files {
		out = append(out, Entry{Name: f.Name, Filename: f.Name, Size: f.Size, Modified: f.ModTime.UTC()})
	}
	return out, nil
}

// Get re-parses the stored XML for name. There is no fallback to any other file.
func (s *Service) Get(ctx context.Context, userID, name string) (resume.Record, error) {
	key, err := resume.NormalizeKey(name)
	if err != nil {
		return resume.Record{}, err
	}
	data, err := s.store.Read(ctx, userID, storage.KindXML, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return resume.Record{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return resume.Record{}, err
	}
	doc, err := resume.Parse(string(data))
	if err != nil {
		return resume.Record{}, err
	}
	return resume.ToRecord(key, doc), nil
}

// Delete removes whichever of the XML and PDF exist. ErrNotFound only when neither did.
func (s *Service) Delete(ctx context.Context, userID, name string) (DeleteResult, error) {
	key, err := resume.NormalizeKey(name)
	if err != nil {
		return DeleteResult{}, err
	}

	res := DeleteResult{Key: key, DeletedFiles: []string{}}
	var paths []string
	for _, kind := range []storage.Kind{storage.KindXML, storage.KindPDF} {
		p, err := s.store.Path(userID, kind, key)
		if err != nil {
			return DeleteResult{}, err
		}
		existed, err := s.store.Remove(ctx, userID, kind, key)
		if err != nil {
			return DeleteResult{}, err
		}
		if !existed {
			continue
		}
		res.DeletedFiles = append(res.DeletedFiles, filepath.ToSlash(filepath.Join(string(kind), filepath.Base(p))))
		paths = append(paths, p)
		s.mirrorDelete(ctx, userID, key, kind)
	}
	if len(paths) == 0 {
		return DeleteResult{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	s.commit(ctx, userID, paths, "Delete resume: "+key+storage.KindPDF.Ext())
	return res, nil
}

// Open returns the stored PDF for download. The caller closes the reader.
func (s *Service) Open(ctx context.Context, userID, name string) (io.ReadCloser, storage.FileInfo, error) {
	key, err := resume.NormalizeKey(name)
	if err != nil {
		return nil, storage.FileInfo{}, err
	}
	rc, info, err := s.store.Open(ctx, userID, storage.KindPDF, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, storage.FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, storage.FileInfo{}, err
	}
	return rc, info, nil
}

// commit never fails the caller. It reports the hash and whether a commit was made.
func (s *Service) commit(ctx context.Context, userID string, paths []string, message string) (string, bool) {
	root, err := s.store.UserRoot(userID)
	if err != nil {
		s.logger.Warn("resolve user root for commit", slog.String("user_id", userID), slog.Any("error", err))
		metrics.ObserveCommit(metrics.CommitFailed)
		return "", false
	}

	hash, err := s.committer.Commit(ctx, root, paths, message)
	switch {
	case err == nil:
		metrics.ObserveCommit(metrics.CommitCommitted)
		s.logger.Debug("committed resume change", slog.String("user_id", userID), slog.String("commit", hash))
		return hash, true
	case errors.Is(err, versioning.ErrNotRepository), errors.Is(err, versioning.ErrNothingToCommit):
		metrics.ObserveCommit(metrics.CommitSkipped)
		s.logger.Info("skipped commit", slog.String("user_id", userID), slog.String("reason", err.Error()))
	default:
		metrics.ObserveCommit(metrics.CommitFailed)
		s.logger.Warn("commit failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	return "", false
}

func (s *Service) mirrorPut(ctx context.Context, userID, key string, kind storage.Kind, data []byte) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Put(ctx, userID, kind, key, data); err != nil {
		s.logger.Warn("mirror upload failed",
			slog.String("user_id", userID),
			slog.String("object", storage.ObjectName(userID, kind, key)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) mirrorDelete(ctx context.Context, userID, key string, kind storage.Kind) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Delete(ctx, userID, kind, key); err != nil {
		s.logger.Warn("mirror delete failed",
			slog.String("user_id", userID),
			slog.String("object", storage.ObjectName(userID, kind, key)),
			slog.Any("error", err),
		)
	}
}
