package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/claimflow/internal/model"
	"github.com/ppiankov/claimflow/internal/worker"
)

// CorpusIngester tokenizes a directory of source documents into per-document
// artifacts, in parallel.
type CorpusIngester struct {
	workers int
	log     *zap.SugaredLogger
}

// NewCorpusIngester creates an ingester with the given worker count.
func NewCorpusIngester(workers int, log *zap.SugaredLogger) *CorpusIngester {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CorpusIngester{workers: workers, log: log}
}

// docJob ingests one source file.
type docJob struct {
	path   string
	outDir string
	log    *zap.SugaredLogger
}

// docResult reports one ingested document.
type docResult struct {
	DocID string
	Path  string
	Err   error
}

// GetError returns the ingestion error, if any.
func (r *docResult) GetError() error { return r.Err }

func (j *docJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &docResult{Path: j.path, Err: err}
	}

	docID := strings.TrimSuffix(filepath.Base(j.path), filepath.Ext(j.path))
	raw, err := os.ReadFile(j.path)
	if err != nil {
		return &docResult{DocID: docID, Path: j.path, Err: fmt.Errorf("read document: %w", err)}
	}

	text := string(raw)
	if strings.EqualFold(filepath.Ext(j.path), ".html") {
		text, err = stripMarkup(text)
		if err != nil {
			return &docResult{DocID: docID, Path: j.path, Err: fmt.Errorf("strip markup: %w", err)}
		}
	}

	doc := BuildDocument(docID, text)
	outPath := filepath.Join(j.outDir, docID+".doc.json")
	if err := WriteDocument(doc, outPath); err != nil {
		return &docResult{DocID: docID, Path: j.path, Err: err}
	}

	j.log.Debugw("ingested document", "doc_id", docID, "sentences", len(doc.Sentences))
	return &docResult{DocID: docID, Path: j.path}
}

// IngestDir ingests every .txt and .html file under corpusDir into outDir and
// returns the ingested document ids. Per-file failures are collected, not
// fatal; an empty corpus is an error.
func (c *CorpusIngester) IngestDir(ctx context.Context, corpusDir, outDir string) ([]string, []error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, []error{fmt.Errorf("read corpus dir: %w", err)}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, []error{fmt.Errorf("create output dir: %w", err)}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".html" {
			continue
		}
		paths = append(paths, filepath.Join(corpusDir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, []error{fmt.Errorf("no .txt or .html documents in %s", corpusDir)}
	}

	pool := worker.NewPoolSize(c.workers, len(paths))
	pool.Start()
	for _, path := range paths {
		if ctx.Err() != nil {
			pool.Shutdown()
			return nil, []error{ctx.Err()}
		}
		pool.Submit(&docJob{path: path, outDir: outDir, log: c.log})
	}

	var docIDs []string
	var errs []error
	for _, result := range pool.Wait() {
		res := result.(*docResult)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
			continue
		}
		docIDs = append(docIDs, res.DocID)
	}
	return docIDs, errs
}

// stripMarkup extracts the visible text of an HTML document, skipping
// scripts, styles, and embedded frames.
func stripMarkup(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}

// WriteDocument serializes a document artifact.
func WriteDocument(doc *model.Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// LoadDocument reads a document artifact back.
func LoadDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", path, err)
	}
	return &doc, nil
}

// LoadDocuments reads every document artifact in a directory.
func LoadDocuments(dir string) ([]*model.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.doc.json"))
	if err != nil {
		return nil, err
	}
	docs := make([]*model.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
