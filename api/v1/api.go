package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookhive/bookhive/store"
)

type Handler struct {
	store  *store.Store
	router *mux.Router
}

// Server registers the read-only catalog routes under /api/v1.
func Server(router *mux.Router, store *store.Store) {
	handler := &Handler{
		store:  store,
		router: router,
	}

	sr := router.PathPrefix("/api/v1").Subrouter()

	sr.HandleFunc("/health", handler.health).Methods(http.MethodGet)
	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	// Register before /books/{id} so "top-rated" is not parsed as an id.
	sr.HandleFunc("/books/top-rated", handler.topRatedBooks).Methods(http.MethodGet)
	sr.HandleFunc("/books/{id:[0-9]+}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/categories", handler.listCategories).Methods(http.MethodGet)
	sr.HandleFunc("/stats/overview", handler.statsOverview).Methods(http.MethodGet)
}
