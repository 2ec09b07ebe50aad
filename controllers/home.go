package controllers

import (
	"context"
	"net/http"

	"event-registration/utils"
)

type TeamCounter interface {
	CountTeams(ctx context.Context) (int, error)
}

type HomeController struct{}

func (c HomeController) Home(teams TeamCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := teams.CountTeams(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.ResponseJSON(w, map[string]int{"total_registrations": total})
	}
}

func (c HomeController) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, map[string]string{"status": "ok"})
	}
}
