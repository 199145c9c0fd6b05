// Package examples builds CodeExample records from an on-disk example
// corpus: a directory tree grouped by category, each leaf holding source
// files and an optional README describing the sample.
package examples

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"

	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/toc"
)

// apiSymbol matches identifiers rooted in the product namespace. Only
// these are recorded as referenced API elements.
var apiSymbol = regexp.MustCompile(`\b` + toc.RootToken + `(?:\.[A-Za-z_][A-Za-z0-9_]*)+`)

var snippetLanguages = map[string]string{
	".cs":  "csharp",
	".vb":  "vb",
	".xml": "xml",
}

// Build walks the corpus root and produces one CodeExample per example
// directory, in path order. Unreadable entries are skipped with a warning.
func Build(root string) ([]model.CodeExample, error) {
	var built []model.CodeExample

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable corpus entry", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		ex, ok := buildExample(root, path)
		if !ok {
			return nil
		}
		built = append(built, ex)
		// Source files below an example directory belong to it.
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("walking example corpus: %w", err)
	}
	return built, nil
}

// buildExample reads one candidate directory. A directory is an example
// when it directly contains at least one source file.
func buildExample(root, dir string) (model.CodeExample, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.CodeExample{}, false
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	rel = filepath.ToSlash(rel)

	ex := model.CodeExample{
		Name:     filepath.Base(dir),
		Category: categoryOf(rel),
	}

	elements := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.EqualFold(name, "README.md") {
			ex.Description = readmeDescription(filepath.Join(dir, name))
			continue
		}
		lang, ok := snippetLanguages[strings.ToLower(filepath.Ext(name))]
		if !ok {
			continue
		}
		code, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("unreadable example file", "path", filepath.Join(dir, name), "error", err)
			continue
		}
		ex.Files = append(ex.Files, rel+"/"+name)
		ex.CodeSnippets = append(ex.CodeSnippets, model.CodeSnippet{
			Title:    name,
			Code:     string(code),
			Language: lang,
		})
		for _, sym := range apiSymbol.FindAllString(string(code), -1) {
			elements[sym] = true
		}
	}

	if len(ex.CodeSnippets) == 0 {
		return model.CodeExample{}, false
	}

	for sym := range elements {
		ex.ApiElements = append(ex.ApiElements, sym)
	}
	sort.Strings(ex.ApiElements)
	return ex, true
}

// categoryOf is the path-like grouping label: the example's parent
// directories relative to the corpus root.
func categoryOf(rel string) string {
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		return rel[:idx]
	}
	return ""
}

// readmeDescription extracts the first paragraph of a README as the
// example description.
func readmeDescription(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	doc := gm.Parse(data, gmparser.NewWithExtensions(gmparser.CommonExtensions))
	var desc string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering || desc != "" {
			return ast.GoToNext
		}
		if para, ok := node.(*ast.Paragraph); ok {
			desc = strings.TrimSpace(string(textOf(para)))
			return ast.Terminate
		}
		return ast.GoToNext
	})
	return desc
}

func textOf(node ast.Node) []byte {
	var out []byte
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil {
			out = append(out, leaf.Literal...)
		}
		return ast.GoToNext
	})
	return out
}
