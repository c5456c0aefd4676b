package domain

import "time"

type FamilyDetails struct {
	ID                    int64     `json:"id"`
	FatherName            string    `json:"father_name"`
	MotherName            string    `json:"mother_name"`
	SpouseName            string    `json:"spouse_name,omitempty"`
	NumberOfChildren      int       `json:"number_of_children"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type FamilyInput struct {
	FatherName            string `json:"father_name" validate:"notblank,max=200,valid_name"`
	MotherName            string `json:"mother_name" validate:"notblank,max=200,valid_name"`
	SpouseName            string `json:"spouse_name" validate:"omitempty,max=200,valid_name"`
	NumberOfChildren      int    `json:"number_of_children" validate:"gte=0,lte=30"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"notblank,max=200,valid_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"notblank,valid_phone"`
}

func (in FamilyInput) ToEntity() (*FamilyDetails, map[string]string) {
	return &FamilyDetails{
		FatherName:            in.FatherName,
		MotherName:            in.MotherName,
		SpouseName:            in.SpouseName,
		NumberOfChildren:      in.NumberOfChildren,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
	}, nil
}
