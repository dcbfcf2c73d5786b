package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"mercari-scraper/models"
)

const sampleCatalog = `{
  "id": "sonny-angel",
  "name": "Sonny Angel",
  "series": [
    {
      "id": "animal3",
      "name": "Animal Series 3",
      "items": [
        {"id": "animal3-rabbit", "name": "Rabbit"},
        {"name": "Secret Hippo", "rarity": "Secret"}
      ]
    },
    {
      "name": "Marine Series",
      "items": [
        {"name": "Dolphin", "image": "img/dolphin.png"}
      ]
    }
  ]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brand.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	brand, err := Load(writeCatalog(t, sampleCatalog))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if brand.Name != "Sonny Angel" || len(brand.Series) != 2 {
		t.Fatalf("unexpected brand: %+v", brand)
	}

	// Explicit IDs are kept, missing ones derived from names.
	if brand.Series[0].ID != "animal3" {
		t.Errorf("series[0].ID: got %q, want animal3", brand.Series[0].ID)
	}
	if brand.Series[1].ID != "marine-series" {
		t.Errorf("series[1].ID: got %q, want marine-series", brand.Series[1].ID)
	}
	if got := brand.Series[0].Items[1].ID; got != "animal3-secret-hippo" {
		t.Errorf("derived item ID: got %q, want animal3-secret-hippo", got)
	}

	// Missing rarity defaults to Regular.
	if brand.Series[0].Items[0].Rarity != models.RarityRegular {
		t.Errorf("default rarity: got %q", brand.Series[0].Items[0].Rarity)
	}
	if brand.Series[0].Items[1].Rarity != models.RaritySecret {
		t.Errorf("explicit rarity: got %q", brand.Series[0].Items[1].Rarity)
	}
}

func TestFlatItemsOrder(t *testing.T) {
	brand, err := Load(writeCatalog(t, sampleCatalog))
	if err != nil {
		t.Fatal(err)
	}

	flat := brand.FlatItems()
	if len(flat) != 3 {
		t.Fatalf("FlatItems: got %d, want 3", len(flat))
	}
	wantNames := []string{"Rabbit", "Secret Hippo", "Dolphin"}
	for i, w := range wantNames {
		if flat[i].Item.Name != w {
			t.Errorf("flat[%d]: got %q, want %q", i, flat[i].Item.Name, w)
		}
	}
	if flat[2].Series.Name != "Marine Series" {
		t.Errorf("flat[2] series: got %q", flat[2].Series.Name)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should error")
	}
	if _, err := Load(writeCatalog(t, "{not json")); err == nil {
		t.Error("malformed JSON should error")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Animal Series 3", "animal-series-3"},
		{"  Work  ", "work"},
		{"Glow (Dark)", "glow-dark"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
