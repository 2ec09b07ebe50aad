package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-registration/catalog"
	"event-registration/metrics"
	"event-registration/models"
	"event-registration/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

const teamIDAttempts = 5

type RegistrationStore interface {
	WorkshopFull(ctx context.Context, name string) (bool, error)
	TeamExists(ctx context.Context, teamID string) (bool, error)
	CreateTeam(ctx context.Context, t models.NewTeam) error
}

// Submission is the raw registration form. Members holds every slot as
// submitted, including blank ones, each with its workshop choice.
type Submission struct {
	TeamName      string
	Members       []models.Member
	TechEvents    []string
	NonTechEvents []string
}

type Receipt struct {
	TeamID           string `json:"team_id"`
	Amount           int    `json:"amount"`
	MemberCount      int    `json:"member_count"`
	RegistrationType string `json:"registration_type"`
}

type RegistrationService struct {
	store   RegistrationStore
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
	newID   func(prefix string) string
}

func NewRegistrationService(store RegistrationStore, c *catalog.Catalog, m *metrics.Metrics, log logrus.FieldLogger) *RegistrationService {
	return &RegistrationService{
		store:   store,
		catalog: c,
		metrics: m,
		log:     log,
		now:     time.Now,
		newID:   NewTeamID,
	}
}

// Register validates a submission and persists the team atomically.
// Validation failures return a *models.ValidationError and write nothing.
func (s *RegistrationService) Register(ctx context.Context, sub Submission) (Receipt, error) {
	receipt, err := s.register(ctx, sub)
	s.metrics.Registration(resultLabel(err))
	return receipt, err
}

func (s *RegistrationService) register(ctx context.Context, sub Submission) (Receipt, error) {
	members := CompleteMembers(sub.Members)
	if len(members) == 0 || len(members) > min(s.catalog.MaxTeamSize, catalog.FullTeamSize) {
		return Receipt{}, models.Invalid(models.ErrInvalidMemberCount, "Invalid participant count")
	}

	tech := utils.CleanList(sub.TechEvents)
	nontech := utils.CleanList(sub.NonTechEvents)
	if err := s.checkCatalog(tech, models.CategoryTechnical); err != nil {
		return Receipt{}, err
	}
	if err := s.checkCatalog(nontech, models.CategoryNonTech); err != nil {
		return Receipt{}, err
	}

	workshops := workshopChoices(members)
	if err := s.checkCatalog(workshops, models.CategoryWorkshop); err != nil {
		return Receipt{}, err
	}
	for _, w := range workshops {
		full, err := s.store.WorkshopFull(ctx, w)
		if err != nil {
			return Receipt{}, err
		}
		if full {
			return Receipt{}, models.Invalid(models.ErrWorkshopFull, fmt.Sprintf("%s workshop is full", w))
		}
	}

	events := utils.CleanList(append(append([]string{}, tech...), nontech...))
	if len(members) == catalog.FullTeamSize && !s.catalog.QualifiesFullTeam(events) && len(workshops) == 0 {
		return Receipt{}, models.Invalid(models.ErrTeamRuleViolation, "")
	}

	regType := Classify(len(workshops) > 0, len(tech) > 0, len(nontech) > 0)

	teamID, err := s.uniqueTeamID(ctx)
	if err != nil {
		return Receipt{}, err
	}

	team := models.NewTeam{
		TeamID:           teamID,
		TeamName:         strings.TrimSpace(sub.TeamName),
		LeaderEmail:      members[0].CollegeEmail,
		RegistrationType: regType,
		AmountPaid:       s.catalog.Fee(len(members)),
		Members:          members,
		Events:           events,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		return Receipt{}, err
	}

	s.log.WithFields(logrus.Fields{
		"team_id": teamID,
		"members": len(members),
		"type":    regType,
	}).Info("team registered")

	return Receipt{
		TeamID:           teamID,
		Amount:           team.AmountPaid,
		MemberCount:      len(members),
		RegistrationType: regType,
	}, nil
}

func (s *RegistrationService) checkCatalog(names []string, category models.Category) error {
	for _, n := range names {
		if !s.catalog.Has(n, category) {
			return models.Invalid(models.ErrUnknownEvent, fmt.Sprintf("Unknown %s event %q", category, n))
		}
	}
	return nil
}

func (s *RegistrationService) uniqueTeamID(ctx context.Context) (string, error) {
	for i := 0; i < teamIDAttempts; i++ {
		id := s.newID(s.catalog.TeamIDPrefix)
		exists, err := s.store.TeamExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", models.ErrDuplicate
}

// CompleteMembers keeps the slots whose six personal fields are all filled in.
// Values are trimmed; a slot keeps its own workshop choice.
func CompleteMembers(slots []models.Member) []models.Member {
	var out []models.Member
	for _, m := range slots {
		m.Name = strings.TrimSpace(m.Name)
		m.StudyYear = strings.TrimSpace(m.StudyYear)
		m.Department = strings.TrimSpace(m.Department)
		m.CollegeName = strings.TrimSpace(m.CollegeName)
		m.Phone = strings.TrimSpace(m.Phone)
		m.CollegeEmail = strings.TrimSpace(m.CollegeEmail)
		m.Workshop = strings.TrimSpace(m.Workshop)
		if validate.Struct(m) != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func workshopChoices(members []models.Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Workshop)
	}
	return utils.CleanList(names)
}

// NewTeamID returns prefix followed by six random upper-case hex characters.
func NewTeamID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(hex[:6])
}

const (
	TypeTechNonTechWorkshop = "technical_nontech_workshop"
	TypeTechNonTech         = "technical_nontech"
	TypeTechnical           = "technical"
	TypeWorkshopOnly        = "workshop_only"
)

type selection struct {
	workshop, tech, nontech bool
}

var registrationTypes = map[selection]string{
	{workshop: true, tech: true, nontech: true}:    TypeTechNonTechWorkshop,
	{workshop: true, tech: true, nontech: false}:   TypeTechNonTechWorkshop,
	{workshop: true, tech: false, nontech: true}:   TypeTechNonTechWorkshop,
	{workshop: true, tech: false, nontech: false}:  TypeWorkshopOnly,
	{workshop: false, tech: true, nontech: true}:   TypeTechNonTech,
	{workshop: false, tech: false, nontech: true}:  TypeTechNonTech,
	{workshop: false, tech: true, nontech: false}:  TypeTechnical,
	{workshop: false, tech: false, nontech: false}: TypeWorkshopOnly,
}

// Classify maps which kinds of events were selected onto a registration type.
func Classify(hasWorkshop, hasTech, hasNonTech bool) string {
	return registrationTypes[selection{workshop: hasWorkshop, tech: hasTech, nontech: hasNonTech}]
}
