package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	"event-registration/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func RespondWithError(w http.ResponseWriter, status int, error models.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(error); err != nil {
		log.WithError(err).Warn("failed to write error response")
	}
}

func ResponseJSON(w http.ResponseWriter, data interface{}) {
	ResponseJSONStatus(w, http.StatusOK, data)
}

func ResponseJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// RedirectWithMessage answers with 303 See Other and a JSON body carrying the
// notice a browser client would show after following the redirect.
func RedirectWithMessage(w http.ResponseWriter, location string, data interface{}) {
	w.Header().Set("Location", location)
	ResponseJSONStatus(w, http.StatusSeeOther, data)
}

func ComparePasswords(hashedPassword string, password []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), password) == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// StatusFor maps workflow errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrWorkshopFull),
		errors.Is(err, models.ErrDuplicate),
		errors.Is(err, models.ErrAlreadySubmitted),
		errors.Is(err, models.ErrAlreadyApproved),
		errors.Is(err, models.ErrPaymentNotSubmitted):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusSeeOther
	}
	return http.StatusInternalServerError
}

// FormList returns the values of a repeated form field, accepting both the
// "name[]" and "name" spellings.
func FormList(r *http.Request, name string) []string {
	if vals, ok := r.PostForm[name+"[]"]; ok {
		return vals
	}
	return r.PostForm[name]
}

// CleanList trims values and drops blanks and repeats, keeping first-seen order.
func CleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
