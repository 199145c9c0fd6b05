package fallback

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// pageCache stores fetched remote pages zstd-compressed on disk so a
// repeated detail lookup within or across runs skips the network. A nil
// directory disables it.
type pageCache struct {
	dir string
}

func newPageCache(dir string) *pageCache {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("page cache disabled", "dir", dir, "error", err)
			dir = ""
		}
	}
	return &pageCache{dir: dir}
}

func (c *pageCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".html.zst")
}

func (c *pageCache) load(url string) ([]byte, bool) {
	if c.dir == "" {
		return nil, false
	}
	f, err := os.Open(c.path(url))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *pageCache) save(url string, data []byte) {
	if c.dir == "" {
		return
	}
	f, err := os.Create(c.path(url))
	if err != nil {
		slog.Warn("page cache write failed", "url", url, "error", err)
		return
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return
	}
	if err := w.Close(); err != nil {
		slog.Warn("page cache write failed", "url", url, "error", err)
	}
}
