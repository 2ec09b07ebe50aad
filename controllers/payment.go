package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"event-registration/models"
	"event-registration/receipts"
	"event-registration/services"
	"event-registration/utils"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type PaymentController struct{}

type paymentPage struct {
	TeamID        string               `json:"team_id"`
	TeamName      string               `json:"team_name,omitempty"`
	Amount        int                  `json:"amount"`
	MemberCount   int                  `json:"member_count"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Submitted     bool                 `json:"submitted"`
}

func (c PaymentController) Info(svc *services.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := svc.Info(r.Context(), mux.Vars(r)["team_id"])
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.ResponseJSON(w, paymentPage{
			TeamID:        team.TeamID,
			TeamName:      team.TeamName,
			Amount:        team.AmountPaid,
			MemberCount:   team.MemberCount,
			PaymentStatus: team.PaymentStatus,
			Submitted:     team.TransactionID != "",
		})
	}
}

// Submit records the transaction reference, with an optional receipt file
// when the form is multipart.
func (c PaymentController) Submit(svc *services.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := mux.Vars(r)["team_id"]
		r.Body = http.MaxBytesReader(w, r.Body, receipts.MaxSize+(1<<20))

		var err error
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			err = r.ParseMultipartForm(receipts.MaxSize)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		sub := services.PaymentSubmission{TransactionID: r.PostFormValue("transaction_id")}
		if r.MultipartForm != nil {
			file, header, err := r.FormFile("receipt")
			switch {
			case errors.Is(err, http.ErrMissingFile):
			case err != nil:
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid receipt file"})
				return
			default:
				defer file.Close()
				if header.Size > receipts.MaxSize {
					utils.RespondWithError(w, http.StatusBadRequest, models.Error{
						Message: fmt.Sprintf("Receipt must be at most %d MB", receipts.MaxSize>>20),
					})
					return
				}
				sub.Receipt = &services.Upload{ContentType: header.Header.Get("Content-Type"), Body: file}
			}
		}

		if err := svc.Submit(r.Context(), teamID, sub); err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.RedirectWithMessage(w, "/", map[string]string{
			"message": "Payment submitted. Await admin approval.",
			"team_id": teamID,
		})
	}
}
