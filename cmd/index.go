package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teklab/tekladoc/internal/config"
	"github.com/teklab/tekladoc/internal/markup"
	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/store"
	"github.com/teklab/tekladoc/internal/toc"
)

var (
	indexTocFile string
	indexDataDir string
)

var indexCmd = &cobra.Command{
	Use:   "index <docs-dir>",
	Short: "Build the local dataset from extracted documentation pages",
	Long: `Parses the table-of-contents sitemap, normalizes every referenced
page into an API record, and writes the dataset (combined records,
per-kind partitions, search projection and TOC) to the data directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexTocFile, "toc", "toc.hhc", "sitemap file, relative to the docs directory")
	indexCmd.Flags().StringVar(&indexDataDir, "data", "", "output directory (default: configured data dir)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	docsDir := args[0]

	dataDir := indexDataDir
	if dataDir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dataDir = cfg.DataDir
	}

	f, err := os.Open(filepath.Join(docsDir, indexTocFile))
	if err != nil {
		return fmt.Errorf("opening sitemap: %w", err)
	}
	entries, err := toc.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing sitemap: %w", err)
	}
	slog.Info("parsed table of contents", "entries", len(entries))

	records := normalizeAll(docsDir, entries)
	slog.Info("normalized pages", "records", len(records), "skipped", len(entries)-len(records))

	if err := store.Save(dataDir, records, entries); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records from %d entries into %s\n",
		len(records), len(entries), dataDir)
	return nil
}

// normalizeAll reads and normalizes every page in parallel, preserving
// sitemap order in the output. Entries whose page is missing or yields
// no record are dropped.
func normalizeAll(docsDir string, entries []model.TocEntry) []model.ApiRecord {
	results := make([]*model.ApiRecord, len(entries))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	var mu sync.Mutex
	skipped := 0

	for i, entry := range entries {
		g.Go(func() error {
			if entry.TargetPage == "" {
				return nil
			}
			html, err := os.ReadFile(filepath.Join(docsDir, filepath.FromSlash(entry.TargetPage)))
			if err != nil {
				slog.Warn("skipping unreadable page", "page", entry.TargetPage, "error", err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			results[i] = markup.Normalize(html, entry)
			return nil
		})
	}
	_ = g.Wait()

	records := make([]model.ApiRecord, 0, len(entries)-skipped)
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}
