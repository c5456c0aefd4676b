package domain

import "time"

type PersonalInformation struct {
	ID                      int64                  `json:"id"`
	Name                    string                 `json:"name"`
	NIDNumber               string                 `json:"nid_number"`
	BloodGroup              BloodGroup             `json:"blood_group"`
	MaritalStatus           MaritalStatus          `json:"marital_status"`
	Religion                Religion               `json:"religion"`
	Sex                     Sex                    `json:"sex"`
	EmailAddress            string                 `json:"email_address,omitempty"`
	PhoneNumber             string                 `json:"phone_number,omitempty"`
	DateOfBirth             Date                   `json:"date_of_birth"`
	UploadCertificate       string                 `json:"upload_certificate"`
	PresentAddress          PresentAddress         `json:"present_address"`
	PermanentAddress        PermanentAddress       `json:"permanent_address"`
	AcademicQualificationID int64                  `json:"academic_qualification_id"`
	AcademicQualification   *AcademicQualification `json:"academic_qualification,omitempty"`
	CreatedAt               time.Time              `json:"created_at"`
	UpdatedAt               time.Time              `json:"updated_at"`
}

type PresentAddressInput struct {
	LocalAddress string `json:"local_address" validate:"notblank,max=200"`
	Division     string `json:"division" validate:"notblank,max=200"`
	District     string `json:"district" validate:"notblank,max=200"`
	Upazilla     string `json:"upazilla" validate:"notblank,max=200"`
	PostOffice   string `json:"post_office" validate:"notblank,max=200"`
	PostalCode   string `json:"postal_code" validate:"required,postal_code_5"`
}

func (in PresentAddressInput) toEntity() PresentAddress {
	return PresentAddress{AddressFields: AddressFields{
		LocalAddress: in.LocalAddress,
		Division:     in.Division,
		District:     in.District,
		Upazilla:     in.Upazilla,
		PostOffice:   in.PostOffice,
		PostalCode:   in.PostalCode,
	}}
}

type PermanentAddressInput struct {
	LocalAddress     string `json:"local_address" validate:"notblank,max=200"`
	Division         string `json:"division" validate:"notblank,max=200"`
	District         string `json:"district" validate:"notblank,max=200"`
	Upazilla         string `json:"upazilla" validate:"notblank,max=200"`
	PostOffice       string `json:"post_office" validate:"notblank,max=200"`
	PostalCode       string `json:"postal_code" validate:"notblank,max=200"`
	YearsAtResidence int    `json:"years_at_residence" validate:"gte=0,lte=150"`
}

func (in PermanentAddressInput) toEntity() PermanentAddress {
	return PermanentAddress{
		AddressFields: AddressFields{
			LocalAddress: in.LocalAddress,
			Division:     in.Division,
			District:     in.District,
			Upazilla:     in.Upazilla,
			PostOffice:   in.PostOffice,
			PostalCode:   in.PostalCode,
		},
		YearsAtResidence: in.YearsAtResidence,
	}
}

type PersonalInformationInput struct {
	Name                    string                `json:"name" validate:"notblank,max=200,valid_name"`
	NIDNumber               string                `json:"nid_number" validate:"required,numeric,min=10,max=17"`
	BloodGroup              BloodGroup            `json:"blood_group" validate:"required"`
	MaritalStatus           MaritalStatus         `json:"marital_status" validate:"required"`
	Religion                Religion              `json:"religion" validate:"required"`
	Sex                     Sex                   `json:"sex" validate:"required"`
	EmailAddress            string                `json:"email_address" validate:"omitempty,email,max=200"`
	PhoneNumber             string                `json:"phone_number" validate:"omitempty,valid_phone"`
	DateOfBirth             string                `json:"date_of_birth" validate:"required,iso_date,past_date"`
	UploadCertificate       string                `json:"upload_certificate" validate:"notblank,max=500"`
	AcademicQualificationID int64                 `json:"academic_qualification_id" validate:"required,gt=0"`
	PresentAddress          PresentAddressInput   `json:"present_address"`
	PermanentAddress        PermanentAddressInput `json:"permanent_address"`
}

// ToEntity applies the closed-set and address rules that struct tags cannot
// express. fields is keyed like validation.FieldErrors.
func (in PersonalInformationInput) ToEntity() (*PersonalInformation, map[string]string) {
	fields := map[string]string{}

	if !in.BloodGroup.IsValid() {
		fields["blood_group"] = "Blood group is not a recognised value"
	}
	if !in.MaritalStatus.IsValid() {
		fields["marital_status"] = "Marital status is not a recognised value"
	}
	if !in.Religion.IsValid() {
		fields["religion"] = "Religion is not a recognised value"
	}
	if !in.Sex.IsValid() {
		fields["sex"] = "Sex is not a recognised value"
	}

	dob, err := ParseDate(in.DateOfBirth)
	if err != nil {
		fields["date_of_birth"] = "Date of birth must be a date in YYYY-MM-DD format"
	}

	present := in.PresentAddress.toEntity()
	if !present.IsValid() {
		fields["present_address.postal_code"] = "Postal code must be exactly 5 digits"
	}

	permanent := in.PermanentAddress.toEntity()
	if !permanent.IsValid() {
		fields["permanent_address.years_at_residence"] = "Years at residence must be at least 1"
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &PersonalInformation{
		Name:                    in.Name,
		NIDNumber:               in.NIDNumber,
		BloodGroup:              in.BloodGroup,
		MaritalStatus:           in.MaritalStatus,
		Religion:                in.Religion,
		Sex:                     in.Sex,
		EmailAddress:            NormalizeEmail(in.EmailAddress),
		PhoneNumber:             in.PhoneNumber,
		DateOfBirth:             dob,
		UploadCertificate:       in.UploadCertificate,
		PresentAddress:          present,
		PermanentAddress:        permanent,
		AcademicQualificationID: in.AcademicQualificationID,
	}, nil
}
