package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/bookhive/bookhive/config"
	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
	"github.com/bookhive/bookhive/store/db"
)

// Initialize the logger and config
func init() {
	config.GetDefaultOptions()
	config.Opts.LogFile = filepath.Join(os.TempDir(), "bookhive-store-test.log")
	log.Logger = log.NewLogger()
}

func createTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "books.db")
	database, err := db.NewDB(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewStore(database.DB)
}

func strPtr(s string) *string {
	return &s
}

func seedBooks(t *testing.T, s *Store) {
	t.Helper()

	books := []*model.Book{
		{
			Title:          "A Light in the Attic",
			Price:          51.77,
			Rating:         3,
			Availability:   22,
			Category:       "Poetry",
			UPC:            strPtr("a897fe39b1053632"),
			ImageURL:       strPtr("https://example.test/media/a.jpg"),
			ProductPageURL: strPtr("https://example.test/catalogue/a-light-in-the-attic_1000/index.html"),
			Description:    strPtr("A collection of poems."),
		},
		{
			Title:        "Tipping the Velvet",
			Price:        53.74,
			Rating:       1,
			Availability: 20,
			Category:     "Historical Fiction",
		},
		{
			Title:        "Soumission",
			Price:        50.10,
			Rating:       1,
			Availability: 20,
			Category:     "Fiction",
		},
		{
			Title:        "Sharp Objects",
			Price:        47.82,
			Rating:       4,
			Availability: 20,
			Category:     "Mystery",
		},
	}
	if err := s.AddBooks(books); err != nil {
		t.Fatalf("Failed to seed books: %v", err)
	}
}

func TestAddAndGetBook(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	book, err := s.GetBook(1)
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if book.Title != "A Light in the Attic" {
		t.Errorf("Unexpected title: %s", book.Title)
	}
	if book.UPC == nil || *book.UPC != "a897fe39b1053632" {
		t.Errorf("Unexpected UPC: %v", book.UPC)
	}
	if book.Price != 51.77 || book.Rating != 3 || book.Availability != 22 {
		t.Errorf("Unexpected fields: %+v", book)
	}

	second, err := s.GetBook(2)
	if err != nil {
		t.Fatalf("Failed to get book: %v", err)
	}
	if second.UPC != nil || second.Description != nil {
		t.Errorf("Expected NULL optional fields, got %+v", second)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	_, err := s.GetBook(999)
	if !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("Expected ErrBookNotFound, got %v", err)
	}
}

func TestListBooksFilters(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	// Case-insensitive title substring.
	books, err := s.ListBooks(&model.FindBook{Title: strPtr("light"), Limit: 50})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(books) != 1 || books[0].ID != 1 {
		t.Errorf("Title filter returned %d books", len(books))
	}

	// Category substring matches both Fiction and Historical Fiction.
	books, err = s.ListBooks(&model.FindBook{Category: strPtr("fiction"), Limit: 50})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("Category filter returned %d books, want 2", len(books))
	}

	// Price window, AND-ed with category.
	min, max := 50.0, 52.0
	books, err = s.ListBooks(&model.FindBook{
		Category: strPtr("fiction"),
		MinPrice: &min,
		MaxPrice: &max,
		Limit:    50,
	})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Soumission" {
		t.Errorf("Combined filter returned %d books", len(books))
	}
}

func TestListBooksPagination(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	books, err := s.ListBooks(&model.FindBook{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("Limit 2 returned %d books", len(books))
	}

	books, err = s.ListBooks(&model.FindBook{Limit: 10, Offset: 3})
	if err != nil {
		t.Fatalf("Failed to list books: %v", err)
	}
	if len(books) != 1 {
		t.Errorf("Offset 3 returned %d books, want 1", len(books))
	}
}

func TestTopRatedBooksOrdering(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	books, err := s.TopRatedBooks(10)
	if err != nil {
		t.Fatalf("Failed to list top rated books: %v", err)
	}
	if len(books) != 4 {
		t.Fatalf("Expected 4 books, got %d", len(books))
	}
	for i := 1; i < len(books); i++ {
		prev, cur := books[i-1], books[i]
		if cur.Rating > prev.Rating {
			t.Errorf("Ratings not descending at %d: %d before %d", i, prev.Rating, cur.Rating)
		}
		if cur.Rating == prev.Rating && cur.Price > prev.Price {
			t.Errorf("Price tie-break not descending at %d", i)
		}
	}
	if books[0].Rating != 4 {
		t.Errorf("Top book rating = %d, want 4", books[0].Rating)
	}

	books, err = s.TopRatedBooks(1)
	if err != nil {
		t.Fatalf("Failed to list top rated books: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Sharp Objects" {
		t.Errorf("Limit 1 returned %+v", books)
	}
}

func TestCategoryCountsSumToTotal(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)

	categories, err := s.CategoryCounts()
	if err != nil {
		t.Fatalf("Failed to count categories: %v", err)
	}
	total, err := s.CountBooks()
	if err != nil {
		t.Fatalf("Failed to count books: %v", err)
	}

	sum := 0
	for _, c := range categories {
		sum += c.Count
	}
	if sum != total {
		t.Errorf("Category counts sum to %d, total is %d", sum, total)
	}
}

func TestStatsOverview(t *testing.T) {
	s := createTestStore(t)

	// Empty table: zero counts, average price must not be NULL.
	overview, err := s.StatsOverview()
	if err != nil {
		t.Fatalf("Failed to build overview: %v", err)
	}
	if overview.TotalBooks != 0 || overview.AvgPrice != 0 {
		t.Errorf("Empty overview = %+v", overview)
	}

	seedBooks(t, s)
	overview, err = s.StatsOverview()
	if err != nil {
		t.Fatalf("Failed to build overview: %v", err)
	}
	if overview.TotalBooks != 4 {
		t.Errorf("TotalBooks = %d, want 4", overview.TotalBooks)
	}
	sum := 0
	for _, count := range overview.RatingDistribution {
		sum += count
	}
	if sum != overview.TotalBooks {
		t.Errorf("Rating distribution sums to %d, want %d", sum, overview.TotalBooks)
	}
	if overview.RatingDistribution[1] != 2 {
		t.Errorf("Two one-star books expected, got %d", overview.RatingDistribution[1])
	}
}

// Appending is pure: re-inserting the same rows doubles the count.
func TestAddBooksTwiceDuplicates(t *testing.T) {
	s := createTestStore(t)
	seedBooks(t, s)
	seedBooks(t, s)

	total, err := s.CountBooks()
	if err != nil {
		t.Fatalf("Failed to count books: %v", err)
	}
	if total != 8 {
		t.Errorf("Count after double seed = %d, want 8", total)
	}
}

func TestTrimTable(t *testing.T) {
	s := createTestStore(t)

	books := make([]*model.Book, 0, 20)
	for i := 0; i < 20; i++ {
		books = append(books, &model.Book{Title: "Book", Price: float64(i), Category: "Fiction"})
	}
	if err := s.AddBooks(books); err != nil {
		t.Fatalf("Failed to seed books: %v", err)
	}

	kept, err := s.TrimTable("books", 1)
	if err != nil {
		t.Fatalf("Failed to trim table: %v", err)
	}
	if kept != 1 {
		t.Errorf("Kept %d rows, want 1", kept)
	}

	book, err := s.GetBook(1)
	if err != nil {
		t.Fatalf("Row id 1 should survive: %v", err)
	}
	if book.ID != 1 {
		t.Errorf("Surviving row id = %d, want 1", book.ID)
	}
	if _, err := s.GetBook(2); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("Row id 2 should be gone, got %v", err)
	}
}
