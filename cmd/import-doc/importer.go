package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/josinaldojr/portfolio-chat/internal/extract"
)

const (
	defaultChunkSize = 2000
	maxPageBytes     = 5 << 20
)

// entrySink stores one chunk of text. *rag.Service satisfies it.
type entrySink interface {
	AddEntry(ctx context.Context, content string) (int64, error)
}

type dryRunSink struct{}

func (dryRunSink) AddEntry(context.Context, string) (int64, error) { return 0, nil }

type importer struct {
	sink        entrySink
	logger      zerolog.Logger
	chunkSize   int
	concurrency int
	httpClient  *http.Client

	documents atomic.Int64
	chunks    atomic.Int64
}

func newImporter(sink entrySink, logger zerolog.Logger, chunkSize, concurrency int) *importer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &importer{
		sink:        sink,
		logger:      logger,
		chunkSize:   chunkSize,
		concurrency: concurrency,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// importFiles walks root and stores every supported file. Unreadable
// entries and files that yield no text are logged and skipped; only a
// missing root or a store failure stops the walk.
func (imp *importer) importFiles(ctx context.Context, root string) error {
	imp.logger.Info().Str("path", root).Msg("importing local files")

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			imp.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			return nil
		}
		if d.IsDir() || !extract.IsSupported(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			imp.logger.Warn().Err(err).Str("file", path).Msg("skipping unreadable file")
			return nil
		}

		text, err := extract.Text(path, data)
		if err != nil {
			imp.logger.Warn().Err(err).Str("file", path).Msg("skipping file")
			return nil
		}

		return imp.store(ctx, fileTitle(path), text)
	})
}

// importSite crawls breadth-first from baseURL, staying on its host. Fetch
// failures are logged and skipped.
func (imp *importer) importSite(ctx context.Context, baseURL string, maxPages int) error {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return fmt.Errorf("invalid base url %q", baseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	imp.logger.Info().Str("base_url", base.String()).Int("max_pages", maxPages).Msg("crawling site")

	visited := make(map[string]bool)
	queue := []string{base.String()}
	pages := 0

	for len(queue) > 0 && pages < maxPages {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		pages++

		page, err := imp.fetch(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			imp.logger.Warn().Err(err).Str("url", current).Msg("skipping page")
			continue
		}

		if text := extract.MainText(page); text != "" {
			if err := imp.store(ctx, pageTitle(current, base), text); err != nil {
				return err
			}
		}

		for _, link := range extract.Links(page, base) {
			if !visited[link] {
				queue = append(queue, link)
			}
		}
	}

	return nil
}

func (imp *importer) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// store chunks text and adds every chunk, at most concurrency at a time.
// The first failure cancels the remaining chunks of the document.
func (imp *importer) store(ctx context.Context, title, text string) error {
	chunks := extract.Chunks(text, imp.chunkSize)
	if len(chunks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.concurrency)

	for i, chunk := range chunks {
		content := chunkContent(title, chunk, i, len(chunks))
		g.Go(func() error {
			id, err := imp.sink.AddEntry(gctx, content)
			if err != nil {
				return fmt.Errorf("store %q part %d: %w", title, i+1, err)
			}
			imp.chunks.Add(1)
			imp.logger.Debug().Int64("entry_id", id).Str("title", title).Int("part", i+1).Msg("chunk stored")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	imp.documents.Add(1)
	imp.logger.Info().Str("title", title).Int("chunks", len(chunks)).Msg("document imported")
	return nil
}

// chunkContent prefixes a chunk with its document title so the snippet
// still says where it came from once retrieved on its own.
func chunkContent(title, chunk string, i, n int) string {
	if title == "" {
		return chunk
	}
	if n > 1 {
		title = fmt.Sprintf("%s (part %d)", title, i+1)
	}
	return title + "\n" + chunk
}

func fileTitle(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.TrimSpace(name)
}

func pageTitle(raw string, base *url.URL) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if strings.Trim(u.Path, "/") == strings.Trim(base.Path, "/") {
		return "Overview"
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := parts[len(parts)-1]
	last = strings.SplitN(last, ".", 2)[0]
	last = strings.ReplaceAll(last, "-", " ")
	return strings.TrimSpace(last)
}
