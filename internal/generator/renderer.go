package generator

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/internal/filter"
	"github.com/yourorg/packetdoc/pkg/types"
)

// CatalogFile is the name of the YAML catalog written to the output dir.
const CatalogFile = "packets.yaml"

// Page is one generated Markdown file, Path relative to the output dir.
type Page struct {
	Path    string
	Content string
}

// linker writes a reference from the current page to another one. rel is
// the relative path used by plain Markdown links; wiki links only need
// the page title.
type linker func(text, rel string) string

func wikiLink(text, _ string) string {
	return "[[" + text + "|" + text + "]]"
}

func markdownLink(text, rel string) string {
	return "[" + text + "](" + filepath.ToSlash(rel) + ")"
}

func linkerFor(style string) linker {
	if style == "markdown" {
		return markdownLink
	}
	return wikiLink
}

// Pages lays out the home page, one overview per server and one detail
// page per packet:
//
//	<index>.md
//	<index>/<Server>.md
//	<index>/<Server>/<Packet>.md
func Pages(book *types.Book, out config.OutputConfig) ([]Page, error) {
	if book == nil {
		return nil, fmt.Errorf("book is nil")
	}
	index := out.IndexName
	if index == "" {
		index = "Packets"
	}
	link := linkerFor(out.LinkStyle)

	pages := []Page{{Path: index + ".md", Content: homePage(book, index, link)}}
	for _, s := range book.Servers {
		pages = append(pages, Page{
			Path:    filepath.Join(index, s.Name+".md"),
			Content: overviewPage(s, index, link),
		})
		for _, p := range filter.Sanitize(s.Packets) {
			pages = append(pages, Page{
				Path:    filepath.Join(index, s.Name, p.Name+".md"),
				Content: packetPage(p, s.Name, index, link),
			})
		}
	}
	return pages, nil
}

// RenderMarkdown writes the pages of book below out.Dir.
func RenderMarkdown(book *types.Book, out config.OutputConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	pages, err := Pages(book, out)
	if err != nil {
		return err
	}
	for _, page := range pages {
		path := filepath.Join(out.Dir, page.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(page.Content), 0o644); err != nil {
			return err
		}
		logger.Debug("page written", "path", path)
	}
	return nil
}

func homePage(book *types.Book, index string, link linker) string {
	b := &strings.Builder{}
	fmt.Fprintln(b, link(index, index+".md"))
	if book.Assembly != "" {
		fmt.Fprintf(b, "\nPackets of `%s`.\n", book.Assembly)
	}
	fmt.Fprintln(b, "## Servers")
	for _, s := range book.Servers {
		fmt.Fprintf(b, "%s\n\n", link(s.Name, filepath.Join(index, s.Name+".md")))
	}
	return b.String()
}

func overviewPage(s types.Server, index string, link linker) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s / %s\n", link(index, filepath.Join("..", index+".md")), link(s.Name, s.Name+".md"))
	fmt.Fprintln(b, "## Overview")
	for _, p := range s.Packets {
		fmt.Fprintf(b, "%s\n\n", link(p.Name, filepath.Join(s.Name, p.Name+".md")))
	}
	return b.String()
}

func packetPage(p types.Packet, server, index string, link linker) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s / %s / %s\n",
		link(index, filepath.Join("..", "..", index+".md")),
		link(server, filepath.Join("..", server+".md")),
		link(p.Name, p.Name+".md"))
	fmt.Fprintf(b, "# %s\n", p.Name)
	if p.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", p.Summary)
	}
	fmt.Fprintln(b, "## Packet Structure")
	fmt.Fprintln(b, "Type | Name | Summary")
	fmt.Fprintln(b, "--- | --- | ---")
	for _, r := range p.Rows {
		fmt.Fprintf(b, "%s | %s | %s\n", r.TypeSignature, r.FieldName, r.Summary)
	}
	return b.String()
}

// RenderCatalog writes book as YAML to outputDir/packets.yaml and returns
// the file path.
func RenderCatalog(book *types.Book, outputDir string) (string, error) {
	if book == nil {
		return "", fmt.Errorf("book is nil")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(book)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, CatalogFile)
	return path, os.WriteFile(path, data, 0o644)
}

// ReadCatalog loads a catalog written by RenderCatalog.
func ReadCatalog(path string) (*types.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var book types.Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// ValidateCatalog performs basic checks on a generated catalog.
func ValidateCatalog(path string) []string {
	book, err := ReadCatalog(path)
	if err != nil {
		return []string{err.Error()}
	}
	var errs []string
	if len(book.Servers) == 0 {
		errs = append(errs, "catalog has no servers")
	}
	for _, s := range book.Servers {
		if s.Name == "" {
			errs = append(errs, "server without name")
		}
		for _, p := range s.Packets {
			if p.Name == "" {
				errs = append(errs, fmt.Sprintf("server %s: packet without name", s.Name))
			}
			for i, r := range p.Rows {
				if r.TypeSignature == "" || r.FieldName == "" {
					errs = append(errs, fmt.Sprintf("packet %s: incomplete row %d", p.FullName, i))
				}
			}
		}
	}
	return errs
}
