package chunker

import (
	"testing"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestCleanLines(t *testing.T) {
	p := New()
	in := "Chapter 1\nIntroduction to cells and tissues\n12\nPage 3 of 10\n1/10\nok\n\n  Cells are the basic unit of life.  \r\nCHAPTER TWO begins here"

	got := p.cleanLines(in)

	want := "Introduction to cells and tissues\nCells are the basic unit of life."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCleanLines_MinLength(t *testing.T) {
	p := New(WithMinLineLength(0))
	if got := p.cleanLines("ok\nyes"); got != "ok\nyes" {
		t.Errorf("expected short lines kept, got %q", got)
	}
}

func TestNormalise_SkipsEmptyPages(t *testing.T) {
	p := New()
	got := p.Normalise(domain.RawContent{
		Type: domain.DocumentTypePDF,
		Pages: []domain.Page{
			{Number: 1, Text: "42"},
			{Number: 2, Text: "Ribosomes synthesise proteins."},
		},
	})

	if got != "[source: page 2] Ribosomes synthesise proteins." {
		t.Errorf("unexpected %q", got)
	}
}

func TestNormalise_Empty(t *testing.T) {
	p := New()
	if got := p.Normalise(domain.RawContent{Type: domain.DocumentTypeText}); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
