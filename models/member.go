package models

type Member struct {
	ID           int64  `json:"-"`
	StudentID    string `json:"student_id"`
	Name         string `json:"member_name" validate:"required"`
	StudyYear    string `json:"study_year,omitempty" validate:"required"`
	Department   string `json:"department,omitempty" validate:"required"`
	CollegeName  string `json:"college_name,omitempty" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	CollegeEmail string `json:"college_email" validate:"required"`
	Workshop     string `json:"workshop,omitempty"`
}
