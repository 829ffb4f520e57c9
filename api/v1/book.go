package v1

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/bookhive/http/request"
	"github.com/bookhive/bookhive/http/response"
	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
	"github.com/bookhive/bookhive/store"
)

const (
	defaultListLimit     = 50
	maxListLimit         = 200
	defaultTopRatedLimit = 10
	maxTopRatedLimit     = 100
)

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := request.QueryIntParam(r, "limit", defaultListLimit)
	if err != nil {
		response.BadRequest(w, r, errors.New("limit must be an integer"))
		return
	}
	if limit < 1 || limit > maxListLimit {
		response.BadRequest(w, r, errors.Errorf("limit must be between 1 and %d", maxListLimit))
		return
	}

	offset, err := request.QueryIntParam(r, "offset", 0)
	if err != nil {
		response.BadRequest(w, r, errors.New("offset must be an integer"))
		return
	}
	if offset < 0 {
		response.BadRequest(w, r, errors.New("offset cannot be negative"))
		return
	}

	minPrice, err := request.QueryFloatParam(r, "min")
	if err != nil {
		response.BadRequest(w, r, errors.New("min must be a number"))
		return
	}
	maxPrice, err := request.QueryFloatParam(r, "max")
	if err != nil {
		response.BadRequest(w, r, errors.New("max must be a number"))
		return
	}

	find := &model.FindBook{
		Title:    request.QueryStringParam(r, "title"),
		Category: request.QueryStringParam(r, "category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    limit,
		Offset:   offset,
	}

	books, err := h.store.ListBooks(find)
	if err != nil {
		log.Error("Error listing books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) topRatedBooks(w http.ResponseWriter, r *http.Request) {
	limit, err := request.QueryIntParam(r, "limit", defaultTopRatedLimit)
	if err != nil {
		response.BadRequest(w, r, errors.New("limit must be an integer"))
		return
	}
	if limit < 1 || limit > maxTopRatedLimit {
		response.BadRequest(w, r, errors.Errorf("limit must be between 1 and %d", maxTopRatedLimit))
		return
	}

	books, err := h.store.TopRatedBooks(limit)
	if err != nil {
		log.Error("Error listing top rated books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	id := request.RouteInt64Param(r, "id")

	book, err := h.store.GetBook(id)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			response.NotFound(w, r, err)
			return
		}
		log.Error("Error getting book", zap.Int64("id", id), zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, book)
}
