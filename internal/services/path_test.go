package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "report", "report"},
		{"upper case", "Report", "report"},
		{"diacritics stripped", "Résumé Financier (v2)", "resume_financier_v2_"},
		{"spaces and symbols", "Q1 2024 — Board Deck!", "q1_2024_board_deck_"},
		{"allowed punctuation kept", "cap-table.v3_final", "cap-table.v3_final"},
		{"underscore runs collapsed", "a___b", "a_b"},
		{"cyrillic replaced", "отчёт", "_"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeName(tc.input); got != tc.expected {
				t.Fatalf("sanitizeName(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestBuildObjectName(t *testing.T) {
	companyID := uuid.New()

	t.Run("prefix and sanitized basename", func(t *testing.T) {
		name := buildObjectName(companyID, "Résumé Financier (v2).pdf")

		if !strings.HasPrefix(name, companyID.String()+"/") {
			t.Fatalf("expected object name scoped under company id, got %q", name)
		}
		if !strings.HasSuffix(name, "_resume_financier_v2_.pdf") {
			t.Fatalf("expected sanitized basename suffix, got %q", name)
		}
	})

	t.Run("extension lower-cased", func(t *testing.T) {
		name := buildObjectName(companyID, "Deck.PDF")
		if !strings.HasSuffix(name, ".pdf") {
			t.Fatalf("expected lower-cased extension, got %q", name)
		}
	})

	t.Run("no extension", func(t *testing.T) {
		name := buildObjectName(companyID, "README")
		if !strings.HasSuffix(name, "_readme") {
			t.Fatalf("expected bare sanitized name, got %q", name)
		}
	})

	t.Run("same filename never collides", func(t *testing.T) {
		first := buildObjectName(companyID, "Q1.pdf")
		second := buildObjectName(companyID, "Q1.pdf")
		if first == second {
			t.Fatalf("expected distinct object names for concurrent uploads, both were %q", first)
		}
	})
}
