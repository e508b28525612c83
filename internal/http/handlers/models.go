package handlers

import (
	"net/http"
)

func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"models": a.Catalog()})
}
