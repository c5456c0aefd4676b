package domain

import "time"

// BOESLInformation is the registration held with the state recruiting agency
type BOESLInformation struct {
	ID                 int64     `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	RegistrationDate   Date      `json:"registration_date"`
	TrainingCenter     string    `json:"training_center"`
	CertificateNumber  string    `json:"certificate_number,omitempty"`
	ValidUntil         *Date     `json:"valid_until,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type BOESLInput struct {
	RegistrationNumber string `json:"registration_number" validate:"notblank,max=100"`
	RegistrationDate   string `json:"registration_date" validate:"required,iso_date"`
	TrainingCenter     string `json:"training_center" validate:"notblank,max=200"`
	CertificateNumber  string `json:"certificate_number" validate:"omitempty,max=100"`
	ValidUntil         string `json:"valid_until" validate:"omitempty,iso_date"`
}

// ToEntity checks registration_date < valid_until when valid_until is given
func (in BOESLInput) ToEntity() (*BOESLInformation, map[string]string) {
	fields := map[string]string{}

	registered, err := ParseDate(in.RegistrationDate)
	if err != nil {
		fields["registration_date"] = "Registration date must be a date in YYYY-MM-DD format"
	}

	var validUntil *Date
	if in.ValidUntil != "" {
		d, err := ParseDate(in.ValidUntil)
		switch {
		case err != nil:
			fields["valid_until"] = "Valid until must be a date in YYYY-MM-DD format"
		case !registered.IsZero() && !registered.Before(d.Time):
			fields["valid_until"] = "Valid until must be after registration date"
		default:
			validUntil = &d
		}
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &BOESLInformation{
		RegistrationNumber: in.RegistrationNumber,
		RegistrationDate:   registered,
		TrainingCenter:     in.TrainingCenter,
		CertificateNumber:  in.CertificateNumber,
		ValidUntil:         validUntil,
	}, nil
}
