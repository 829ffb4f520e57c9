package scraper

import (
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
	"github.com/bookhive/bookhive/store"
)

// Sink receives the rows collected for one category.
type Sink interface {
	Persist(books []*model.Book) error
}

// CatalogSink appends each batch to a CSV file and to the relational
// store. Both targets are pure appends; neither deduplicates.
type CatalogSink struct {
	store   *store.Store
	csvPath string
}

func NewCatalogSink(store *store.Store, csvPath string) *CatalogSink {
	return &CatalogSink{
		store:   store,
		csvPath: csvPath,
	}
}

func (s *CatalogSink) Persist(books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	if err := AppendBooksCSV(s.csvPath, books); err != nil {
		return err
	}
	if err := s.store.AddBooks(books); err != nil {
		return err
	}

	log.Info("Persisted scraped books",
		zap.Int("rows", len(books)),
		zap.String("csv", s.csvPath))
	return nil
}
