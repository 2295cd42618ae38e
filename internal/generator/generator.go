package generator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yourorg/packetdoc/internal/config"
	"github.com/yourorg/packetdoc/internal/describe"
	"github.com/yourorg/packetdoc/internal/docindex"
	"github.com/yourorg/packetdoc/internal/filter"
	"github.com/yourorg/packetdoc/internal/metadata"
	"github.com/yourorg/packetdoc/pkg/types"
)

// ProgressFunc reports generation progress.
type ProgressFunc func(stage string)

// Inputs is the loaded metadata plus its documentation.
type Inputs struct {
	Assembly *types.Assembly
	Docs     *docindex.Index
}

// LoadInputs checks both paths, then loads the type graph and the XML
// documentation. Doc comments found in Go sources fill the keys the XML
// file does not cover.
func LoadInputs(metadataPath, docsPath string) (*Inputs, error) {
	if err := checkFile("metadata", metadataPath); err != nil {
		return nil, err
	}
	if err := checkFile("documentation", docsPath); err != nil {
		return nil, err
	}
	asm, sourceDocs, err := metadata.Load(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	docs, err := docindex.Load(docsPath)
	if err != nil {
		return nil, fmt.Errorf("load documentation: %w", err)
	}
	docs.Merge(sourceDocs)
	if asm.Name == "" {
		asm.Name = docs.Assembly()
	}
	return &Inputs{Assembly: asm, Docs: docs}, nil
}

func checkFile(role, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s path", ErrMissingArgument, role)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileNotFoundError{Role: role, Path: path}
		}
		return fmt.Errorf("stat %s file: %w", role, err)
	}
	return nil
}

// Build describes every packet of every configured server. Packet order
// inside a server follows filter.Apply, and the same Book feeds both the
// overview and the detail pages.
func Build(in *Inputs, cfg config.PacketsConfig, indexName string) (*types.Book, error) {
	if in == nil || in.Assembly == nil {
		return nil, errors.New("inputs are nil")
	}
	var docs describe.Summaries
	if in.Docs != nil {
		docs = in.Docs
	}
	d := describe.New(docs)

	book := &types.Book{Assembly: in.Assembly.Name, Index: indexName}
	for _, g := range filter.Apply(in.Assembly.Types, cfg) {
		server := types.Server{Name: g.Server, Packets: make([]types.Packet, 0, len(g.Types))}
		seen := make(map[string]string, len(g.Types))
		for _, t := range g.Types {
			if other, dup := seen[t.Name]; dup {
				return nil, fmt.Errorf("server %s: packets %s and %s share the page name %s", g.Server, other, t.FullName(), t.Name)
			}
			seen[t.Name] = t.FullName()
			p, err := d.Describe(t)
			if err != nil {
				return nil, err
			}
			server.Packets = append(server.Packets, p)
		}
		book.Servers = append(book.Servers, server)
	}
	return book, nil
}

// Generate builds the book and writes every configured output format.
func Generate(in *Inputs, cfg *config.Config, logger *slog.Logger, onProgress ProgressFunc) (*types.Book, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	report(onProgress, "describing packets")
	book, err := Build(in, cfg.Packets, cfg.Output.IndexName)
	if err != nil {
		return nil, err
	}
	for _, s := range book.Servers {
		logger.Info("server described", "server", s.Name, "packets", len(s.Packets))
	}

	report(onProgress, "rendering outputs")
	for _, format := range cfg.Output.Formats {
		if format != "markdown" && format != "yaml" {
			return nil, fmt.Errorf("unknown output format %q", format)
		}
	}
	if cfg.HasFormat("markdown") {
		if err := RenderMarkdown(book, cfg.Output, logger); err != nil {
			return nil, err
		}
	}
	if cfg.HasFormat("yaml") {
		path, err := RenderCatalog(book, cfg.Output.Dir)
		if err != nil {
			return nil, err
		}
		for _, problem := range ValidateCatalog(path) {
			logger.Warn("catalog check", "problem", problem)
		}
	}
	logger.Info("generation finished", "packets", book.PacketCount(), "dir", cfg.Output.Dir)
	return book, nil
}

func report(fn ProgressFunc, msg string) {
	if fn != nil {
		fn(msg)
	}
}
