package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Sources lists where documents come from: inline texts first, then files.
type Sources struct {
	Texts []string
	// Paths are files or directories; directories are walked recursively.
	Paths []string
	// Extensions filters files found in directories. Empty means every file.
	Extensions []string
	// ChunkWords splits file text into windows of this many words. Zero keeps each file whole.
	ChunkWords   int
	ChunkOverlap int
}

// Collect returns the inline texts followed by one document per readable file.
// Files are visited in lexical order so positions are stable between runs.
// Files that extract to nothing are skipped.
func Collect(ctx context.Context, src Sources, extractor *extract.Extractor, logger *zap.Logger) ([]models.Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	chunker := NewChunker(src.ChunkWords, src.ChunkOverlap)
	docs := make([]models.Document, 0, len(src.Texts))
	for _, t := range src.Texts {
		docs = append(docs, models.Document{Text: t, Source: models.SourceInline})
	}

	addFile := func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := extractor.Extract(path)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", path, err)
		}
		text = utils.CollapseWhitespace(text)
		if text == "" {
			logger.Warn("skipping empty document", zap.String("path", path))
			return nil
		}
		docs = append(docs, chunker.Chunk(path, text)...)
		return nil
	}

	for _, p := range src.Paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat corpus path: %w", err)
		}
		if !info.IsDir() {
			if err := addFile(p); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !extensionAllowed(filepath.Ext(path), src.Extensions) {
				return nil
			}
			return addFile(path)
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// LoadSources collects documents from src and loads them.
func (ld *Loader) LoadSources(ctx context.Context, src Sources, extractor *extract.Extractor) (*Corpus, error) {
	docs, err := Collect(ctx, src, extractor, ld.logger)
	if err != nil {
		return nil, err
	}
	return ld.LoadDocuments(ctx, docs)
}

func extensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
