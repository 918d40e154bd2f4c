package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/adam/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != 2000 {
			t.Errorf("expected chunkSize 2000, got %d", p.chunkSize)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.ChunkSize())
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithChunkSize(-5))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_EmptyContent(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{ID: "doc"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestProcessor_BoundaryLengths(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantSizes []int
	}{
		{"single character", 1, []int{1}},
		{"below limit", 1999, []int{1999}},
		{"exactly limit", 2000, []int{2000}},
		{"one over limit", 2001, []int{2000, 1}},
		{"two full chunks", 4000, []int{2000, 2000}},
		{"two and a bit", 4500, []int{2000, 2000, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &domain.Document{ID: "doc", Content: strings.Repeat("a", tt.length)}
			chunks, err := New().Process(context.Background(), doc, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) != len(tt.wantSizes) {
				t.Fatalf("expected %d chunks, got %d", len(tt.wantSizes), len(chunks))
			}
			for i, want := range tt.wantSizes {
				if chunks[i].Len() != want {
					t.Errorf("chunk %d: expected %d characters, got %d", i, want, chunks[i].Len())
				}
			}
		})
	}
}

func TestSplit_Partition(t *testing.T) {
	texts := []string{
		"short",
		strings.Repeat("abcdefghij", 537),
		strings.Repeat("日本語のテキスト", 300),
		strings.Repeat("mixed ascii and émojis 🎉 ", 211),
	}

	for _, text := range texts {
		for _, size := range []int{1, 7, 100, 2000} {
			chunks := Split("doc", text, size)

			runeCount := utf8.RuneCountInString(text)
			wantCount := (runeCount + size - 1) / size
			if len(chunks) != wantCount {
				t.Fatalf("size %d: expected %d chunks, got %d", size, wantCount, len(chunks))
			}

			var joined strings.Builder
			for i, c := range chunks {
				if c.Index != i {
					t.Fatalf("expected index %d, got %d", i, c.Index)
				}
				if c.DocumentID != "doc" {
					t.Fatalf("expected document id doc, got %s", c.DocumentID)
				}
				if !utf8.ValidString(c.Content) {
					t.Fatalf("chunk %d splits a multi-byte character", i)
				}
				if c.Len() > size {
					t.Fatalf("chunk %d has %d characters, limit %d", i, c.Len(), size)
				}
				if text[c.StartOffset:c.EndOffset] != c.Content {
					t.Fatalf("chunk %d offsets do not match content", i)
				}
				if i > 0 && chunks[i-1].EndOffset != c.StartOffset {
					t.Fatalf("chunk %d does not start where chunk %d ends", i, i-1)
				}
				joined.WriteString(c.Content)
			}
			if joined.String() != text {
				t.Fatalf("size %d: chunks do not reconstruct the text", size)
			}
			if chunks[0].StartOffset != 0 || chunks[len(chunks)-1].EndOffset != len(text) {
				t.Fatalf("size %d: chunks do not cover the text", size)
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("déjà vu ", 1000)
	a := Split("doc", text, 333)
	b := Split("doc", text, 333)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplit_NonPositiveSizeUsesDefault(t *testing.T) {
	chunks := Split("doc", strings.Repeat("x", 2001), 0)
	if len(chunks) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(chunks))
	}
}
