package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/config"
	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/scraper"
	"github.com/bookhive/bookhive/server"
	"github.com/bookhive/bookhive/store"
	"github.com/bookhive/bookhive/store/db"
)

const (
	greetingBanner = `
██████   ██████   ██████  ██   ██ ██   ██ ██ ██    ██ ███████
██   ██ ██    ██ ██    ██ ██  ██  ██   ██ ██ ██    ██ ██
██████  ██    ██ ██    ██ █████   ███████ ██ ██    ██ █████
██   ██ ██    ██ ██    ██ ██  ██  ██   ██ ██  ██  ██  ██
██████   ██████   ██████  ██   ██ ██   ██ ██   ████   ███████
`
)

var (
	configFile string

	scrapeLimit       int
	scrapeMetricsAddr string

	resetDB    string
	resetTable string
	resetLimit int

	rootCmd = &cobra.Command{
		Use:   "bookhive",
		Short: "Bookhive serves a read-only book catalog API and scrapes its data",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap(); err != nil {
				return err
			}
			fmt.Println(greetingBanner)

			database, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			s := store.NewStore(database.DB)
			if err := s.Ping(); err != nil {
				return errors.Wrap(err, "error pinging database")
			}

			srv := server.StartServer(s)
			log.Info("Server started", zap.String("addr", srv.Addr))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	scrapeCmd = &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the catalog site and append rows to the CSV and the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap(); err != nil {
				return err
			}

			database, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			s, err := scraper.New(
				config.Opts.ScrapeBaseURL,
				scrapeLimit,
				time.Duration(config.Opts.ScrapeTimeout)*time.Second,
				config.Opts.UserAgent,
			)
			if err != nil {
				return err
			}

			if scrapeMetricsAddr != "" {
				metricsServer := &http.Server{
					Addr:    scrapeMetricsAddr,
					Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
				}
				go func() {
					if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error("Metrics server failed", zap.Error(err))
					}
				}()
				defer metricsServer.Close()
				log.Info("Metrics server enabled", zap.String("addr", scrapeMetricsAddr))
			}

			sink := scraper.NewCatalogSink(store.NewStore(database.DB), config.Opts.CSVPath)

			start := time.Now()
			count, err := s.Run(sink)
			if err != nil {
				log.Error("Scrape failed", zap.Int("collected", count), zap.Error(err))
				return err
			}
			log.Info("Scrape complete",
				zap.Int("items", count),
				zap.Duration("duration", time.Since(start)),
				zap.String("csv", config.Opts.CSVPath),
				zap.String("db", config.Opts.DSN))
			return nil
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Trim a table to its first N rows ordered by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bootstrap(); err != nil {
				return err
			}

			if _, err := os.Stat(resetDB); err != nil {
				return errors.Errorf("database not found: %s", resetDB)
			}

			database, err := db.NewDB(resetDB)
			if err != nil {
				return err
			}
			defer database.Close()

			total, err := store.NewStore(database.DB).TrimTable(resetTable, resetLimit)
			if err != nil {
				return err
			}
			fmt.Printf("Reset complete: %d rows kept in %s\n", total, resetDB)
			return nil
		},
	}
)

func bootstrap() error {
	config.GetDefaultOptions()
	if configFile != "" {
		if _, err := config.ParseFile(configFile); err != nil {
			return err
		}
	}
	if _, err := config.GetConfig(); err != nil {
		return err
	}
	log.Logger = log.NewLogger()
	return nil
}

// openStore opens the database and applies the schema when missing.
func openStore() (*db.DB, error) {
	database, err := db.NewDB(config.Opts.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to database")
	}
	if err := database.Migrate(context.Background()); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "error migrating database")
	}
	return database, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file")

	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "total item limit across all categories (0 = unlimited)")
	scrapeCmd.Flags().StringVar(&scrapeMetricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	resetCmd.Flags().StringVar(&resetDB, "db", "data/books.db", "path of the sqlite database")
	resetCmd.Flags().StringVar(&resetTable, "table", "books", "table to trim")
	resetCmd.Flags().IntVar(&resetLimit, "limit", 20, "number of rows to keep")

	rootCmd.AddCommand(serveCmd, scrapeCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	if log.Logger != nil {
		log.Logger.Sync()
	}
}
