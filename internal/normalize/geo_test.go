package normalize

import (
	"errors"
	"testing"
)

// TestParseGeoMode tests geo mode parsing.
func TestParseGeoMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    GeoMode
		wantErr bool
	}{
		{input: "off", want: GeoOff},
		{input: "", want: GeoOff},
		{input: "REMOVE", want: GeoRemove},
		{input: " extract ", want: GeoExtract},
		{input: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseGeoMode(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidGeoMode) {
				t.Errorf("ParseGeoMode(%q) error = %v, want ErrInvalidGeoMode", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGeoMode(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGeoMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestGeoCleanerProcess tests the three geo handling modes.
func TestGeoCleanerProcess(t *testing.T) {
	t.Parallel()

	g := NewGeoCleaner()

	t.Run("off mode passes everything through", func(t *testing.T) {
		t.Parallel()

		phrase, tokens, keep := g.Process("купить обувь москва", GeoOff)
		if !keep || phrase != "купить обувь москва" || tokens != nil {
			t.Errorf("GeoOff changed phrase: %q, tokens=%v, keep=%v", phrase, tokens, keep)
		}
	})

	t.Run("remove strips geo terms", func(t *testing.T) {
		t.Parallel()

		phrase, tokens, keep := g.Process("купить обувь москва", GeoRemove)
		if !keep {
			t.Fatal("phrase with content words should be kept")
		}
		if phrase != "купить обувь" {
			t.Errorf("phrase = %q, want %q", phrase, "купить обувь")
		}
		if len(tokens) != 1 || tokens[0] != "москва" {
			t.Errorf("tokens = %v, want [москва]", tokens)
		}
	})

	t.Run("remove drops pure-geo phrases", func(t *testing.T) {
		t.Parallel()

		_, _, keep := g.Process("москва", GeoRemove)
		if keep {
			t.Error("phrase consisting only of geo terms must be dropped")
		}
	})

	t.Run("remove matches whole words only", func(t *testing.T) {
		t.Parallel()

		phrase, _, keep := g.Process("московский дворик", GeoRemove)
		if !keep || phrase != "московский дворик" {
			t.Errorf("substring match mangled phrase: %q, keep=%v", phrase, keep)
		}
	})

	t.Run("remove handles multi-word terms", func(t *testing.T) {
		t.Parallel()

		phrase, tokens, keep := g.Process("такси нижний новгород", GeoRemove)
		if !keep || phrase != "такси" {
			t.Errorf("phrase = %q, keep=%v, want такси", phrase, keep)
		}
		if len(tokens) != 1 || tokens[0] != "нижний новгород" {
			t.Errorf("tokens = %v, want [нижний новгород]", tokens)
		}
	})

	t.Run("extract keeps only geo phrases", func(t *testing.T) {
		t.Parallel()

		phrase, tokens, keep := g.Process("доставка спб", GeoExtract)
		if !keep || phrase != "доставка спб" {
			t.Errorf("geo phrase was not kept: %q, keep=%v", phrase, keep)
		}
		if len(tokens) != 1 || tokens[0] != "спб" {
			t.Errorf("tokens = %v, want [спб]", tokens)
		}

		_, _, keep = g.Process("доставка еды", GeoExtract)
		if keep {
			t.Error("non-geo phrase must be dropped in extract mode")
		}
	})

	t.Run("custom terms extend the vocabulary", func(t *testing.T) {
		t.Parallel()

		custom := NewGeoCleaner("сочи")
		if !custom.Has("отели сочи") {
			t.Error("custom term not matched")
		}
	})
}
