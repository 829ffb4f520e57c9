package scraper

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bookhive/bookhive/model"
)

var csvHeader = []string{
	"title", "price", "rating", "availability", "category",
	"image_url", "product_page_url", "description", "upc",
}

// AppendBooksCSV appends rows to the CSV file at path, creating it with
// a header row only when it does not exist yet.
func AppendBooksCSV(path string, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open csv file %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat csv file")
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			return errors.Wrap(err, "failed to write csv header")
		}
	}

	for _, book := range books {
		record := []string{
			book.Title,
			strconv.FormatFloat(book.Price, 'f', 2, 64),
			strconv.Itoa(book.Rating),
			strconv.Itoa(book.Availability),
			book.Category,
			stringOrEmpty(book.ImageURL),
			stringOrEmpty(book.ProductPageURL),
			stringOrEmpty(book.Description),
			stringOrEmpty(book.UPC),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "failed to write csv record")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to flush csv records")
	}
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
