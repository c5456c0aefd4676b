package domain

import (
	"fmt"
	"time"
)

type PreviousExperience struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	Designation string `json:"designation"`
	Country     string `json:"country"`
	FromYear    int    `json:"from_year"`
	ToYear      int    `json:"to_year"`
}

type WorkInformation struct {
	ID                  int64                `json:"id"`
	JobCategory         string               `json:"job_category"`
	SkillLevel          SkillLevel           `json:"skill_level"`
	PreferredCountry    string               `json:"preferred_country"`
	YearsOfExperience   int                  `json:"years_of_experience"`
	PreviousExperiences []PreviousExperience `json:"previous_experiences"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

type PreviousExperienceInput struct {
	CompanyName string `json:"company_name" validate:"notblank,max=200"`
	Designation string `json:"designation" validate:"notblank,max=200"`
	Country     string `json:"country" validate:"notblank,max=100"`
	FromYear    int    `json:"from_year" validate:"required,gte=1950,max_current_year"`
	ToYear      int    `json:"to_year" validate:"required,gte=1950,max_current_year"`
}

type WorkInput struct {
	JobCategory         string                    `json:"job_category" validate:"notblank,max=200"`
	SkillLevel          SkillLevel                `json:"skill_level" validate:"required"`
	PreferredCountry    string                    `json:"preferred_country" validate:"notblank,max=100"`
	YearsOfExperience   int                       `json:"years_of_experience" validate:"gte=0,lte=60"`
	PreviousExperiences []PreviousExperienceInput `json:"previous_experiences" validate:"max=20,dive"`
}

// ToEntity checks from_year <= to_year <= current year on each experience
func (in WorkInput) ToEntity() (*WorkInformation, map[string]string) {
	fields := map[string]string{}

	if !in.SkillLevel.IsValid() {
		fields["skill_level"] = "Skill level is not a recognised value"
	}

	currentYear := time.Now().Year()
	experiences := make([]PreviousExperience, 0, len(in.PreviousExperiences))
	for i, e := range in.PreviousExperiences {
		key := fmt.Sprintf("previous_experiences[%d].", i)
		if e.ToYear > currentYear {
			fields[key+"to_year"] = "To year cannot be in the future"
		} else if e.FromYear > e.ToYear {
			fields[key+"to_year"] = "To year must not be before from year"
		}
		experiences = append(experiences, PreviousExperience{
			CompanyName: e.CompanyName,
			Designation: e.Designation,
			Country:     e.Country,
			FromYear:    e.FromYear,
			ToYear:      e.ToYear,
		})
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &WorkInformation{
		JobCategory:         in.JobCategory,
		SkillLevel:          in.SkillLevel,
		PreferredCountry:    in.PreferredCountry,
		YearsOfExperience:   in.YearsOfExperience,
		PreviousExperiences: experiences,
	}, nil
}
