// Package ingest feeds community documents into an embedded vector database
// so other tooling can search them semantically. A SQLite ledger tracks what
// has already been ingested; unchanged files are skipped on re-runs.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxChunkLen = 1200

type Config struct {
	// DocsDir is the directory tree to ingest (.md, .markdown, .txt).
	DocsDir string
	// DBPath is the on-disk location of the vector database.
	DBPath string
	// Collection names the vector collection. Defaults to "community-docs".
	Collection string
	// LedgerPath is the SQLite ingest ledger. Defaults to DBPath + ".ledger.db".
	LedgerPath string
	// Embedding overrides the embedding function; when nil the default
	// OpenAI-backed one is used (OPENAI_API_KEY).
	Embedding chromem.EmbeddingFunc
}

type Ingester struct {
	cfg    Config
	col    *chromem.Collection
	ledger *gorm.DB
}

type Stats struct {
	Scanned  int
	Skipped  int
	Ingested int
	Chunks   int
}

func New(cfg Config) (*Ingester, error) {
	if cfg.DocsDir == "" || cfg.DBPath == "" {
		return nil, errors.New("ingest: docs dir and db path are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "community-docs"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = cfg.DBPath + ".ledger.db"
	}
	if cfg.Embedding == nil {
		cfg.Embedding = chromem.NewEmbeddingFuncDefault()
	}

	db, err := chromem.NewPersistentDB(cfg.DBPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector db: %w", err)
	}
	col, err := db.GetOrCreateCollection(cfg.Collection, nil, cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", cfg.Collection, err)
	}
	ledger, err := openLedger(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("opening ingest ledger: %w", err)
	}

	return &Ingester{cfg: cfg, col: col, ledger: ledger}, nil
}

// Run walks the docs directory and ingests every new or changed document.
func (ing *Ingester) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	err := filepath.WalkDir(ing.cfg.DocsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ingestible(path) {
			return nil
		}
		stats.Scanned++

		rel, err := filepath.Rel(ing.cfg.DocsDir, path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(raw)
		checksum := hex.EncodeToString(sum[:])

		var prev Document
		known := ing.ledger.Where("path = ?", rel).First(&prev).Error == nil
		if known && prev.Checksum == checksum {
			stats.Skipped++
			return nil
		}

		if known && prev.Chunks > 0 {
			// Drop the stale chunks of a changed file before re-adding.
			ids := make([]string, prev.Chunks)
			for i := range ids {
				ids[i] = chunkID(rel, i)
			}
			if err := ing.col.Delete(ctx, nil, nil, ids...); err != nil {
				return fmt.Errorf("deleting stale chunks of %s: %w", rel, err)
			}
		}

		chunks := splitDocument(string(raw))
		docs := make([]chromem.Document, 0, len(chunks))
		for i, chunk := range chunks {
			docs = append(docs, chromem.Document{
				ID:       chunkID(rel, i),
				Metadata: map[string]string{"path": rel},
				Content:  chunk,
			})
		}
		if len(docs) > 0 {
			if err := ing.col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
				return fmt.Errorf("embedding %s: %w", rel, err)
			}
		}

		row := Document{Path: rel, Checksum: checksum, Chunks: len(chunks)}
		if known {
			err = ing.ledger.Model(&prev).Updates(map[string]interface{}{
				"checksum": checksum,
				"chunks":   len(chunks),
			}).Error
		} else {
			err = ing.ledger.Create(&row).Error
		}
		if err != nil {
			return fmt.Errorf("recording %s in ledger: %w", rel, err)
		}

		log.Debug().Str("path", rel).Int("chunks", len(chunks)).Msg("Ingested document")
		stats.Ingested++
		stats.Chunks += len(chunks)
		return nil
	})

	return stats, err
}

// Query runs a semantic search over the ingested collection.
func (ing *Ingester) Query(ctx context.Context, query string, limit int) ([]chromem.Result, error) {
	if limit <= 0 {
		limit = 5
	}
	if count := ing.col.Count(); count < limit {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}
	return ing.col.Query(ctx, query, limit, nil, nil)
}

func ingestible(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

func chunkID(rel string, i int) string {
	return fmt.Sprintf("%s#%d", rel, i)
}

// splitDocument breaks text into chunks of at most maxChunkLen runes along
// paragraph boundaries. Oversized paragraphs become chunks of their own.
func splitDocument(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var sb strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if sb.Len() > 0 && sb.Len()+len(para) > maxChunkLen {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(para)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}
