package model //import "github.com/bookhive/bookhive/model"

// Book is one row of the catalog. The optional fields come from the
// scraped detail page and stay NULL when the source page lacks them.
type Book struct {
	ID             int64   `json:"id"`
	UPC            *string `json:"upc"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	Rating         int     `json:"rating"`
	Availability   int     `json:"availability"`
	Category       string  `json:"category"`
	ImageURL       *string `json:"image_url"`
	ProductPageURL *string `json:"product_page_url"`
	Description    *string `json:"description"`
}

type FindBook struct {
	ID *int64 `json:"id"`
	// Title and Category are case-insensitive substring matches.
	Title    *string  `json:"title"`
	Category *string  `json:"category"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`

	// The maximum number of books to return and how many to skip.
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StatsOverview struct {
	TotalBooks int     `json:"total_books"`
	AvgPrice   float64 `json:"avg_price"`
	// RatingDistribution maps a star rating to the number of books
	// carrying it. Only ratings present in the table appear.
	RatingDistribution map[int]int `json:"rating_distribution"`
}

type Health struct {
	Status string `json:"status"`
	Books  int    `json:"books"`
}
