package scraper

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookhive/bookhive/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	return records
}

func TestAppendBooksCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "books.csv")
	upc := "a22124811bfa8350"

	books := []*model.Book{
		{Title: "A Light in the Attic", Price: 51.77, Rating: 3, Availability: 22, Category: "Poetry", UPC: &upc},
		{Title: "Soumission", Price: 50.10, Rating: 1, Availability: 20, Category: "Fiction"},
	}
	if err := AppendBooksCSV(path, books); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "title" || records[0][8] != "upc" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "A Light in the Attic" || records[1][1] != "51.77" || records[1][8] != upc {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][8] != "" {
		t.Errorf("expected empty upc for nil pointer, got %q", records[2][8])
	}
}

func TestAppendBooksCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	books := []*model.Book{{Title: "Sharp Objects", Price: 47.82, Rating: 4, Category: "Mystery"}}

	if err := AppendBooksCSV(path, books); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := AppendBooksCSV(path, books); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	for _, record := range records[1:] {
		if record[0] != "Sharp Objects" {
			t.Errorf("unexpected row: %v", record)
		}
	}
}

func TestAppendBooksCSVEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := AppendBooksCSV(path, nil); err != nil {
		t.Fatalf("empty append failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty append should not create the file")
	}
}
