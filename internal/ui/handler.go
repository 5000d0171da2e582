// Package ui serves the server-rendered status pages: run history, run
// detail, and the quarantine browser.
package ui

import (
	"errors"
	"net/http"

	"refinery/internal/domain"

	gomponents "maragu.dev/gomponents"
)

type Handler struct {
	Runs       domain.BatchRunRepository
	Quarantine domain.QuarantineReader
}

func NewHandler(runs domain.BatchRunRepository, quarantine domain.QuarantineReader) *Handler {
	return &Handler{Runs: runs, Quarantine: quarantine}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) renderServiceError(w http.ResponseWriter, _ *http.Request, err error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		renderHTML(w, http.StatusNotFound, errorPage("Not Found", err.Error()))
		return
	}
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", err.Error()))
		return
	}
	renderHTML(w, http.StatusInternalServerError, errorPage("Something Went Wrong", "The page could not be loaded. Check the server logs."))
}
