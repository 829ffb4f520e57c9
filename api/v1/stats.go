package v1

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bookhive/bookhive/http/response"
	"github.com/bookhive/bookhive/log"
	"github.com/bookhive/bookhive/model"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountBooks()
	if err != nil {
		log.Error("Error counting books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, &model.Health{Status: "ok", Books: count})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.CategoryCounts()
	if err != nil {
		log.Error("Error listing categories", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, categories)
}

func (h *Handler) statsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.store.StatsOverview()
	if err != nil {
		log.Error("Error building stats overview", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, overview)
}
