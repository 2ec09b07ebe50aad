package notify

import (
	"bytes"
	"strings"
	"text/template"

	"event-registration/models"
)

// Branding is the event identity printed in every message.
type Branding struct {
	Title string
	Venue string
}

var approvalTemplate = template.Must(template.New("approval").Parse(`
🎉 {{.Title}} – REGISTRATION APPROVED 🎉

Team ID : {{.Team.TeamID}}
Team    : {{.TeamName}}
Type    : {{.Team.RegistrationType}}

==============================
👥 MEMBER DETAILS
==============================
{{range .Members}}
Student ID : {{.StudentID}}
Name       : {{.Name}}
Phone      : {{.Phone}}
Email      : {{.CollegeEmail}}
------------------------------
{{end}}
{{- if .Events}}
🎯 EVENTS:
{{- range .Events}}
• {{.}}
{{- end}}
{{end}}
{{- if .Workshops}}
🛠 WORKSHOPS:
{{- range .Workshops}}
• {{.}}
{{- end}}
{{end}}
📍 Venue: {{.Venue}}
📅 Event: {{.Title}}
`))

type approvalView struct {
	models.Approval
	Branding
	TeamName string
}

// Subject is the e-mail subject line for an approval.
func (b Branding) Subject() string {
	return b.Title + " – Registration Approved"
}

// ComposeApproval renders the plain-text approval message.
func (b Branding) ComposeApproval(a models.Approval) (string, error) {
	name := strings.TrimSpace(a.Team.TeamName)
	if name == "" {
		name = "Individual"
	}
	var buf bytes.Buffer
	err := approvalTemplate.Execute(&buf, approvalView{Approval: a, Branding: b, TeamName: name})
	return buf.String(), err
}

// ComposeSMS renders the short text message sent to the leader's phone.
func (b Branding) ComposeSMS(a models.Approval) string {
	return b.Title + ": registration " + a.Team.TeamID + " approved. Details sent to " + a.Team.LeaderEmail + "."
}
