package controllers

import (
	"context"
	"net/http"

	"event-registration/catalog"
	"event-registration/models"
	"event-registration/services"
	"event-registration/utils"
)

type SeatLister interface {
	WorkshopSeats(ctx context.Context) ([]models.WorkshopSeats, error)
}

type TeamController struct{}

type registrationForm struct {
	Title           string                 `json:"title"`
	Venue           string                 `json:"venue"`
	FeePerMember    int                    `json:"fee_per_member"`
	MaxTeamSize     int                    `json:"max_team_size"`
	FullTeamEvents  []string               `json:"full_team_events"`
	TechnicalEvents []models.Event         `json:"technical_events"`
	NonTechEvents   []models.Event         `json:"nontech_events"`
	Workshops       []models.WorkshopSeats `json:"workshops"`
}

// Form describes what the registration form offers, including the seats
// left in each workshop.
func (c TeamController) Form(cat *catalog.Catalog, seats SeatLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workshops, err := seats.WorkshopSeats(r.Context())
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.ResponseJSON(w, registrationForm{
			Title:           cat.Title,
			Venue:           cat.Venue,
			FeePerMember:    cat.FeePerMember,
			MaxTeamSize:     cat.MaxTeamSize,
			FullTeamEvents:  cat.FullTeamEvents,
			TechnicalEvents: cat.ByCategory(models.CategoryTechnical),
			NonTechEvents:   cat.ByCategory(models.CategoryNonTech),
			Workshops:       workshops,
		})
	}
}

func (c TeamController) Register(svc *services.RegistrationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}

		receipt, err := svc.Register(r.Context(), submissionFromForm(r))
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		utils.RedirectWithMessage(w, "/payment/"+receipt.TeamID, receipt)
	}
}

// submissionFromForm zips the repeated member fields into slots by position.
func submissionFromForm(r *http.Request) services.Submission {
	names := utils.FormList(r, "member_name")
	years := utils.FormList(r, "study_year")
	departments := utils.FormList(r, "department")
	colleges := utils.FormList(r, "college_name")
	phones := utils.FormList(r, "phone")
	emails := utils.FormList(r, "college_email")
	workshops := utils.FormList(r, "workshop_choice")

	slots := len(names)
	for _, l := range [][]string{years, departments, colleges, phones, emails} {
		slots = max(slots, len(l))
	}

	sub := services.Submission{
		TeamName:      r.PostFormValue("team_name"),
		TechEvents:    utils.FormList(r, "tech_events"),
		NonTechEvents: utils.FormList(r, "nontech_events"),
	}
	for i := 0; i < slots; i++ {
		sub.Members = append(sub.Members, models.Member{
			Name:         at(names, i),
			StudyYear:    at(years, i),
			Department:   at(departments, i),
			CollegeName:  at(colleges, i),
			Phone:        at(phones, i),
			CollegeEmail: at(emails, i),
			Workshop:     at(workshops, i),
		})
	}
	return sub
}
