package controllers

import (
	"net/http"

	"event-registration/models"
	"event-registration/utils"

	log "github.com/sirupsen/logrus"
)

// respondWithServiceError writes the status mapped from err. Store failures
// are logged and answered with a generic message.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := utils.StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		utils.RespondWithError(w, status, models.Error{Message: "Internal server error"})
	case http.StatusSeeOther:
		utils.RedirectWithMessage(w, "/admin/login", models.Error{Message: err.Error()})
	default:
		utils.RespondWithError(w, status, models.Error{Message: err.Error()})
	}
}

// at returns the i-th value of a repeated form field, or "" past its end.
func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
