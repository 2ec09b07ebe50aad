package controllers

import (
	"net/http"

	"event-registration/models"
	"event-registration/services"
	"event-registration/session"
	"event-registration/utils"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type AdminController struct{}

func (c AdminController) LoginForm(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sessions.FromRequest(r); err == nil {
			utils.RedirectWithMessage(w, "/admin/dashboard", map[string]string{"message": "Already logged in"})
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{
			"message": "Admin login",
			"fields":  []string{"username", "password"},
		})
	}
}

func (c AdminController) Login(svc *services.AdminService, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		token, expires, err := svc.Login(r.Context(), services.Credentials{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		})
		if errors.Is(err, models.ErrInvalidCredentials) {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid credentials"})
			return
		}
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		sessions.SetCookie(w, token, expires)
		utils.RedirectWithMessage(w, "/admin/dashboard", map[string]string{"message": "Logged in"})
	}
}

func (c AdminController) Dashboard(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Dashboard(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.ResponseJSON(w, d)
	}
}

func (c AdminController) Approve(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := mux.Vars(r)["team_id"]
		if err := svc.Approve(r.Context(), teamID); err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.RedirectWithMessage(w, "/admin/dashboard", map[string]string{
			"message": "Payment approved for team " + teamID,
		})
	}
}

func (c AdminController) Logout(svc *services.AdminService, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(session.CookieName); err == nil {
			svc.Logout(cookie.Value)
		}
		sessions.ClearCookie(w)
		utils.RedirectWithMessage(w, "/admin/login", map[string]string{"message": "Logged out"})
	}
}

// RequireAdmin lets the request through only with a valid admin session and
// redirects to the login page otherwise.
func (c AdminController) RequireAdmin(sessions *session.Manager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := sessions.FromRequest(r)
		if err != nil {
			respondWithServiceError(w, r, models.ErrUnauthenticated)
			return
		}
		log.WithFields(log.Fields{"admin": claims.Subject, "path": r.URL.Path}).Debug("admin request")
		next.ServeHTTP(w, r)
	}
}
