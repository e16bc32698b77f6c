package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func sampleInvoice() Invoice {
	return Invoice{
		ID:          42,
		Title:       "Site vitrine",
		Description: "Developpement et mise en ligne",
		AmountHT:    1000,
		TVA:         20,
		AmountTTC:   1200,
		ClientName:  "Acme SARL",
	}
}

func TestGenerateWritesDocument(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	path, err := g.Generate(sampleInvoice())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if filepath.Base(path) != "invoice-42.pdf" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF payload, got %d bytes", len(data))
	}
}

func TestGenerateCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	g := NewGenerator(dir)

	if _, err := g.Generate(sampleInvoice()); err != nil {
		t.Fatalf("generate into missing dir: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected dir created: %v", err)
	}
}

func TestRegenerateOverwritesSamePath(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	inv := sampleInvoice()
	first, err := g.Generate(inv)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	inv.AmountHT = 2500
	inv.AmountTTC = 3000
	second, err := g.Generate(inv)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if first != second {
		t.Fatalf("expected stable path, got %s then %s", first, second)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single document, found %d", len(entries))
	}
}

func TestGenerateHandlesOptionalFields(t *testing.T) {
	g := NewGenerator(t.TempDir())

	inv := sampleInvoice()
	inv.Description = ""
	inv.ProjectTitle = ""
	if _, err := g.Generate(inv); err != nil {
		t.Fatalf("generate without optional fields: %v", err)
	}

	inv.ID = 43
	inv.Description = "Phase 2"
	inv.ProjectTitle = "Refonte"
	if _, err := g.Generate(inv); err != nil {
		t.Fatalf("generate with optional fields: %v", err)
	}
}

func TestGenerateFailsOnUnwritableDir(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	g := NewGenerator(blocked)
	if _, err := g.Generate(sampleInvoice()); err == nil {
		t.Fatal("expected error when storage dir cannot be created")
	}
}
