package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
	"github.com/custodia-labs/adam/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// sniffLen is how many leading bytes are handed to the classifier.
const sniffLen = 3072

// DocumentService ingests files into the document store and answers
// queries over what was ingested.
type DocumentService struct {
	store      driven.DocumentStore
	classifier driven.Classifier
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	now        func() time.Time

	// ingestMu serialises Ingest and IngestDirectory.
	ingestMu sync.Mutex
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	store driven.DocumentStore,
	classifier driven.Classifier,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
) *DocumentService {
	return &DocumentService{
		store:      store,
		classifier: classifier,
		extractors: extractors,
		pipeline:   pipeline,
		now:        time.Now,
	}
}

// Ingest classifies, extracts, chunks and stores one file.
func (s *DocumentService) Ingest(ctx context.Context, path string) (*domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &domain.IngestionFailure{Path: path, Stage: domain.StageRead, Err: err}
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	doc, failure := s.ingestFile(ctx, abs)
	if failure != nil {
		return nil, failure
	}
	return doc, nil
}

// IngestDirectory ingests every regular, non-hidden file under dir in path
// order. Per-file failures are recorded in the report; the returned error
// is reserved for an unusable directory or cancellation.
func (s *DocumentService) IngestDirectory(
	ctx context.Context,
	dir string,
	opts driving.IngestOptions,
) (*domain.IngestionReport, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory %q: %w", dir, err)
	}

	files, err := collectFiles(abs, opts.Recursive)
	if err != nil {
		return nil, err
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	report := &domain.IngestionReport{Directory: abs}
	logger.Debug("ingest directory %s: %d files", abs, len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("ingest %s: %w", abs, err)
		}

		doc, failure := s.ingestWithTimeout(ctx, path, opts.FileTimeout)
		if failure != nil && ctx.Err() != nil {
			// The batch was cancelled mid-file; the file is not reported.
			return report, fmt.Errorf("ingest %s: %w", abs, ctx.Err())
		}

		outcome := domain.IngestionOutcome{Path: path, Document: doc, Failure: failure}
		if failure != nil {
			logger.Warn("%v", failure)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	logger.Debug("ingest directory %s: %d ok, %d failed", abs, report.Succeeded(), report.Failed())
	return report, nil
}

func (s *DocumentService) ingestWithTimeout(
	ctx context.Context,
	path string,
	timeout time.Duration,
) (*domain.Document, *domain.IngestionFailure) {
	if timeout <= 0 {
		return s.ingestFile(ctx, path)
	}
	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.ingestFile(fileCtx, path)
}

// ingestFile runs the pipeline for one absolute path. Caller must hold ingestMu.
func (s *DocumentService) ingestFile(ctx context.Context, path string) (*domain.Document, *domain.IngestionFailure) {
	fail := func(stage domain.IngestStage, err error) (*domain.Document, *domain.IngestionFailure) {
		return nil, &domain.IngestionFailure{Path: path, Stage: stage, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(domain.StageRead, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(domain.StageRead, domain.NotFoundError("file", path))
		}
		return fail(domain.StageRead, err)
	}
	if !info.Mode().IsRegular() {
		return fail(domain.StageRead, fmt.Errorf("not a regular file: %w", domain.ErrInvalidInput))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(domain.StageRead, err)
	}

	sniff := data
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	class := s.classifier.Classify(path, sniff)
	if !class.IsValid() {
		return fail(domain.StageClassify, fmt.Errorf("class %q: %w", class, domain.ErrUnsupportedType))
	}
	raw := &domain.RawDocument{
		Path:      path,
		MimeClass: class,
		MIMEType:  s.classifier.MIMEType(path, sniff),
		Content:   data,
	}

	extractor := s.extractors.For(class)
	extraction, err := extractor.Extract(ctx, raw)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &domain.ExtractionError{Kind: domain.ExtractionTimeout, Path: path, Err: err}
		}
		return fail(domain.StageExtract, err)
	}

	doc := &domain.Document{
		SourcePath: path,
		Filename:   filepath.Base(path),
		MimeClass:  class,
		MIMEType:   raw.MIMEType,
		SizeBytes:  info.Size(),
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		Encoding:   extraction.Encoding,
		Content:    extraction.Text,
		Metadata:   extraction.Metadata,
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return fail(domain.StageChunk, err)
	}
	doc.Chunks = chunks
	doc.IngestedAt = s.now()

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fail(domain.StageStore, err)
	}

	logger.Debug("ingested %s as %s (%s, %d chunks) via %s",
		path, doc.ID, class, len(doc.Chunks), extractor.Name())
	return doc, nil
}

// collectFiles lists regular, non-hidden files under dir sorted by path.
func collectFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFoundError("directory", dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		if path == dir {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// GetMetadata returns the metadata view of a document.
func (s *DocumentService) GetMetadata(ctx context.Context, id string) (*domain.DocumentMetadata, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	meta := domain.MetadataOf(doc)
	return &meta, nil
}

// GetChunks returns a document's chunks in order.
func (s *DocumentService) GetChunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	return s.store.GetChunks(ctx, id)
}

// GetChunk returns the chunk at index.
func (s *DocumentService) GetChunk(ctx context.Context, id string, index int) (*domain.Chunk, error) {
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(chunks) {
		return nil, domain.NotFoundError("chunk", fmt.Sprintf("%s#%d", id, index))
	}
	chunk := chunks[index]
	return &chunk, nil
}

// Search finds chunks containing query, case-insensitively.
func (s *DocumentService) Search(ctx context.Context, query string) (domain.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query: %w", domain.ErrInvalidInput)
	}
	return s.store.Search(ctx, query)
}

// ResolveMention returns the full text of the mentioned document.
func (s *DocumentService) ResolveMention(ctx context.Context, id string) (string, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// List returns all documents ordered by ID.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Remove deletes a document and its chunks.
func (s *DocumentService) Remove(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}

// Stats returns document and chunk counts.
func (s *DocumentService) Stats(ctx context.Context) (domain.StoreStats, error) {
	docs, chunks, err := s.store.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, err
	}
	return domain.StoreStats{Documents: docs, Chunks: chunks}, nil
}
