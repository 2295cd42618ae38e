package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourorg/packetdoc/internal/generator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PACKETDOC_CATALOG_PATH", filepath.Join(dir, "catalog.db"))
	return dir
}

func sample(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func TestGenerateMissingArgument(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "generate", sample("network.yaml"))
	if !errors.Is(err, generator.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "generate METADATA DOCUMENTATION") {
		t.Fatalf("expected usage in error, got %v", err)
	}
}

func TestGenerateFileNotFound(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "generate", "-o", filepath.Join(dir, "out"),
		sample("network.yaml"), filepath.Join(dir, "missing.xml"))
	if !errors.Is(err, generator.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "documentation file not found") {
		t.Fatalf("error should name the documentation file: %v", err)
	}
}

func TestGenerateRecordAndRuns(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "none.yaml")
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "--config", cfg, "generate", "--record", "--link-style", "markdown", "-o", outDir,
		sample("network.yaml"), sample("Rhisis.Network.xml"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(out, "run ") || !strings.Contains(out, "6 packets") {
		t.Fatalf("unexpected output %q", out)
	}
	runID := strings.TrimSuffix(strings.Fields(out)[1], ":")

	page, err := os.ReadFile(filepath.Join(outDir, "Packets", "Login", "Handshake.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(page), "[Packets](../../Packets.md)") {
		t.Fatalf("expected markdown links:\n%s", page)
	}

	out, err = execute(t, "--config", cfg, "runs", "list")
	if err != nil || !strings.Contains(out, runID) {
		t.Fatalf("runs list: %q err=%v", out, err)
	}
	out, err = execute(t, "--config", cfg, "runs", "show", "--run", runID)
	if err != nil || !strings.Contains(out, "Handshake") || !strings.Contains(out, "Rhisis.Network") {
		t.Fatalf("runs show: %q err=%v", out, err)
	}
	if _, err := execute(t, "--config", cfg, "runs", "delete", "--run", runID); err != nil {
		t.Fatalf("runs delete: %v", err)
	}
	if _, err := execute(t, "--config", cfg, "runs", "show", "--run", runID); err == nil {
		t.Fatalf("expected error for deleted run")
	}
}
