package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
)

// Category is one listing discovered on the front page.
type Category struct {
	Name string
	URL  string
}

// Scraper crawls a paginated, categorized catalog site sequentially.
// There is no retry, no crawl state and no concurrency: any network
// error or non-2xx response aborts the whole run.
type Scraper struct {
	base    *url.URL
	limit   int
	front   *colly.Collector
	list    *colly.Collector
	detail  *colly.Collector
	Metrics *Metrics

	collected int
	done      bool
	runErr    error
	current   *model.Book
	category  string
	books     []*model.Book
}

// New builds a scraper for the site rooted at baseURL. limit caps the
// total number of items across all categories; 0 means unlimited.
func New(baseURL string, limit int, timeout time.Duration, userAgent string) (*Scraper, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if parsed.Host == "" {
		return nil, errors.New("base url must include a host")
	}

	newCollector := func() *colly.Collector {
		c := colly.NewCollector(
			colly.AllowedDomains(parsed.Host),
			colly.UserAgent(userAgent),
			// The same product can appear under several categories and
			// the source is fetched fresh every time, like re-running
			// a plain HTTP GET.
			colly.AllowURLRevisit(),
		)
		c.SetRequestTimeout(timeout)
		return c
	}

	s := &Scraper{
		base:    parsed,
		limit:   limit,
		front:   newCollector(),
		list:    newCollector(),
		detail:  newCollector(),
		Metrics: NewMetrics(),
	}
	s.registerHandlers()
	return s, nil
}

// Run crawls every discovered category in order and hands the rows of
// each finished category to the sink. Persisted rows survive a failed
// run; rows of the in-flight category are lost. Running twice against
// the same sink duplicates every row.
func (s *Scraper) Run(sink Sink) (int, error) {
	categories, err := s.discoverCategories()
	if err != nil {
		return 0, err
	}
	log.Info("Discovered categories", zap.Int("count", len(categories)))

	for _, category := range categories {
		log.Info("Scraping category", zap.String("name", category.Name))
		books, err := s.scrapeCategory(category)
		if err != nil {
			return s.collected, err
		}
		if len(books) > 0 {
			if err := sink.Persist(books); err != nil {
				return s.collected, err
			}
		}
		if s.done {
			log.Info("Item limit reached", zap.Int("limit", s.limit))
			break
		}
	}
	return s.collected, nil
}

// discoverCategories pulls category links from the front page's side
// navigation. The URL keyword filter mirrors the site's path layout and
// silently skips anything else, so a markup change can drop categories.
func (s *Scraper) discoverCategories() ([]Category, error) {
	var categories []Category

	s.front.OnHTML(".side_categories a", func(e *colly.HTMLElement) {
		href := e.Request.AbsoluteURL(e.Attr("href"))
		if !strings.Contains(href, "catalogue") && !strings.Contains(href, "category") {
			return
		}
		categories = append(categories, Category{
			Name: strings.TrimSpace(e.Text),
			URL:  href,
		})
	})

	if err := s.front.Visit(s.base.String()); err != nil {
		return nil, errors.Wrapf(err, "fetch front page %s", s.base)
	}
	if s.runErr != nil {
		return nil, s.runErr
	}
	return categories, nil
}

func (s *Scraper) scrapeCategory(category Category) ([]*model.Book, error) {
	s.books = nil
	s.category = category.Name

	if err := s.list.Visit(category.URL); err != nil && s.runErr == nil {
		return nil, errors.Wrapf(err, "fetch category page %s", category.URL)
	}
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.books, nil
}

func (s *Scraper) registerHandlers() {
	s.instrument(s.front)
	s.instrument(s.list)
	s.instrument(s.detail)

	s.list.OnHTML("article.product_pod", func(e *colly.HTMLElement) {
		if s.done || s.runErr != nil {
			return
		}
		book, err := s.extractListing(e)
		if err != nil {
			s.fail(err)
			return
		}
		if book == nil {
			return
		}

		// The detail page fills description, UPC and availability.
		s.current = book
		err = s.detail.Visit(*book.ProductPageURL)
		s.current = nil
		if err != nil {
			s.fail(errors.Wrapf(err, "fetch detail page %s", *book.ProductPageURL))
			return
		}
		if s.runErr != nil {
			return
		}

		s.books = append(s.books, book)
		s.collected++
		s.Metrics.IncItems()
		if s.limit > 0 && s.collected >= s.limit {
			s.done = true
		}
	})

	s.list.OnHTML("li.next > a", func(e *colly.HTMLElement) {
		if s.done || s.runErr != nil {
			return
		}
		next := e.Request.AbsoluteURL(e.Attr("href"))
		if err := s.list.Visit(next); err != nil {
			s.fail(errors.Wrapf(err, "fetch next page %s", next))
		}
	})

	s.detail.OnHTML("article.product_page", func(e *colly.HTMLElement) {
		book := s.current
		if book == nil {
			return
		}

		if desc := strings.TrimSpace(e.DOM.Find("#product_description ~ p").First().Text()); desc != "" {
			book.Description = &desc
		}

		e.ForEach("table.table-striped tr", func(_ int, row *colly.HTMLElement) {
			if strings.TrimSpace(row.ChildText("th")) != "UPC" {
				return
			}
			if upc := strings.TrimSpace(row.ChildText("td")); upc != "" {
				book.UPC = &upc
			}
		})

		book.Availability = ParseAvailability(e.ChildText("p.availability"))
	})
}

func (s *Scraper) extractListing(e *colly.HTMLElement) (*model.Book, error) {
	title := strings.TrimSpace(e.ChildAttr("h3 a", "title"))
	href := e.ChildAttr("h3 a", "href")
	if title == "" || href == "" {
		return nil, nil
	}
	productURL := e.Request.AbsoluteURL(href)

	price, err := ParsePrice(e.ChildText("p.price_color"))
	if err != nil {
		return nil, errors.Wrapf(err, "listing %q", title)
	}

	book := &model.Book{
		Title:          title,
		Price:          price,
		Rating:         RatingFromClass(e.ChildAttr("p.star-rating", "class")),
		Category:       s.category,
		ProductPageURL: &productURL,
	}

	// Thumbnails resolve against the site root, not the listing page.
	if imageURL := s.resolveBase(e.ChildAttr("img", "src")); imageURL != "" {
		book.ImageURL = &imageURL
	}
	return book, nil
}

func (s *Scraper) resolveBase(ref string) string {
	if ref == "" {
		return ""
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(parsed).String()
}

func (s *Scraper) instrument(c *colly.Collector) {
	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		s.Metrics.IncRequest()
	})
	c.OnResponse(func(r *colly.Response) {
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		requestURL := ""
		if r != nil && r.Request != nil && r.Request.URL != nil {
			requestURL = r.Request.URL.String()
		}
		s.fail(errors.Wrapf(err, "request %s", requestURL))
	})
}

// fail records the first error of the run. Everything after it is
// skipped; the run aborts as soon as control returns to Run.
func (s *Scraper) fail(err error) {
	s.Metrics.IncError()
	if s.runErr == nil {
		s.runErr = err
	}
}
