package scanner

import (
	"context"
	"testing"

	"PapersDigest/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, Request) ([]domain.Paper, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "hf-page"})
	reg.Register(stubScanner{name: "hf-api"})

	if _, err := reg.Resolve("hf-api"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, err := reg.Resolve("arxiv"); err == nil {
		t.Fatalf("expected error for unknown scanner")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "hf-api" || names[1] != "hf-page" {
		t.Fatalf("unexpected names: %v", names)
	}
}
