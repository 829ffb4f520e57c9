package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
)

// ErrBookNotFound is returned by GetBook for an id that was never inserted.
var ErrBookNotFound = errors.New("Book not found")

const bookColumns = `
        id,
        upc,
        title,
        price,
        rating,
        availability,
        category,
        image_url,
        product_page_url,
        description`

// GetBook returns the single book matching the id.
func (s *Store) GetBook(id int64) (*model.Book, error) {
	list, err := s.ListBooks(&model.FindBook{ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrBookNotFound
	}
	return list[0], nil
}

// ListBooks returns books matching the filters, AND-ed together.
// SQLite's LIKE is case-insensitive for ASCII, which matches the
// substring semantics the API documents. No ordering is guaranteed.
func (s *Store) ListBooks(find *model.FindBook) ([]*model.Book, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Title; v != nil {
		where, args = append(where, "title LIKE ?"), append(args, "%"+*v+"%")
	}
	if v := find.Category; v != nil {
		where, args = append(where, "category LIKE ?"), append(args, "%"+*v+"%")
	}
	if v := find.MinPrice; v != nil {
		where, args = append(where, "price >= ?"), append(args, *v)
	}
	if v := find.MaxPrice; v != nil {
		where, args = append(where, "price <= ?"), append(args, *v)
	}

	query := `SELECT ` + bookColumns + `
    FROM books
    WHERE ` + strings.Join(where, " AND ")
	if v := find.Limit; v > 0 {
		query += fmt.Sprintf(" LIMIT %d", v)
		if find.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", find.Offset)
		}
	}

	log.Debug("SQL query and args", zap.String("query", query), zap.Any("args", args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query books")
	}
	defer rows.Close()

	return scanBooks(rows)
}

// TopRatedBooks returns up to limit books sorted by rating descending,
// ties broken by price descending.
func (s *Store) TopRatedBooks(limit int) ([]*model.Book, error) {
	query := `SELECT ` + bookColumns + `
    FROM books
    ORDER BY rating DESC, price DESC
    LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query top rated books")
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (s *Store) CountBooks() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count books")
	}
	return count, nil
}

// CategoryCounts groups books by category and counts each group.
func (s *Store) CategoryCounts() ([]*model.CategoryCount, error) {
	rows, err := s.db.Query(`SELECT category, COUNT(*) FROM books GROUP BY category`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query category counts")
	}
	defer rows.Close()

	list := make([]*model.CategoryCount, 0)
	for rows.Next() {
		c := &model.CategoryCount{}
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// StatsOverview returns the total row count, the average price (0 for an
// empty table) and the count of books per rating value.
func (s *Store) StatsOverview() (*model.StatsOverview, error) {
	overview := &model.StatsOverview{
		RatingDistribution: make(map[int]int),
	}

	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(price), 0) FROM books`)
	if err := row.Scan(&overview.TotalBooks, &overview.AvgPrice); err != nil {
		return nil, errors.Wrap(err, "failed to query book stats")
	}

	rows, err := s.db.Query(`SELECT rating, COUNT(*) FROM books GROUP BY rating`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query rating distribution")
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		overview.RatingDistribution[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overview, nil
}

// AddBooks appends the books in a single transaction. The store assigns
// ids; there is no uniqueness check, so inserting the same rows twice
// keeps both copies.
func (s *Store) AddBooks(books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
        INSERT INTO books (upc, title, price, rating, availability, category, image_url, product_page_url, description)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare book insert")
	}
	defer stmt.Close()

	for _, book := range books {
		res, err := stmt.Exec(
			book.UPC,
			book.Title,
			book.Price,
			book.Rating,
			book.Availability,
			book.Category,
			book.ImageURL,
			book.ProductPageURL,
			book.Description,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert book %q", book.Title)
		}
		if id, err := res.LastInsertId(); err == nil {
			book.ID = id
		}
	}

	return tx.Commit()
}

// TrimTable rebuilds the table keeping only the first keep rows ordered
// by id. The retained rows keep their ids. Destructive, no backup.
func (s *Store) TrimTable(table string, keep int) (int, error) {
	script := fmt.Sprintf(`
    DROP TABLE IF EXISTS __tmp_books__;
    CREATE TABLE __tmp_books__ AS
      SELECT * FROM %s ORDER BY id LIMIT %d;
    DROP TABLE %s;
    ALTER TABLE __tmp_books__ RENAME TO %s;
    `, table, keep, table, table)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return 0, errors.Wrapf(err, "failed to rebuild table %s", table)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	var total int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&total); err != nil {
		return 0, errors.Wrapf(err, "failed to count rows in %s", table)
	}
	return total, nil
}

func scanBooks(rows *sql.Rows) ([]*model.Book, error) {
	list := make([]*model.Book, 0)
	for rows.Next() {
		b := &model.Book{}
		if err := rows.Scan(
			&b.ID,
			&b.UPC,
			&b.Title,
			&b.Price,
			&b.Rating,
			&b.Availability,
			&b.Category,
			&b.ImageURL,
			&b.ProductPageURL,
			&b.Description,
		); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
