package domain

import (
	"encoding/json"
	"testing"
	"time"

	"go-intake-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPresentAddress(t *testing.T) {
	tests := []struct {
		postal string
		want   bool
	}{
		{"12345", true},
		{"00001", true},
		{"1234", false},
		{"123456", false},
		{"12a45", false},
		{"1234 ", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.postal, func(t *testing.T) {
			addr := PresentAddress{AddressFields: AddressFields{PostalCode: tt.postal}}
			assert.Equal(t, tt.want, IsValidPresentAddress(addr))
			assert.Equal(t, tt.want, Address(addr).IsValid())
		})
	}
}

func TestIsValidPermanentAddress(t *testing.T) {
	assert.False(t, IsValidPermanentAddress(PermanentAddress{YearsAtResidence: 0}))
	assert.False(t, IsValidPermanentAddress(PermanentAddress{YearsAtResidence: -3}))
	assert.True(t, IsValidPermanentAddress(PermanentAddress{YearsAtResidence: 1}))
	assert.True(t, PermanentAddress{YearsAtResidence: 12}.IsValid())
}

func TestAddressString(t *testing.T) {
	a := PresentAddress{AddressFields: AddressFields{LocalAddress: "House 12, Road 4", District: "Dhaka"}}
	assert.Equal(t, "House 12, Road 4, Dhaka", a.String())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", NormalizeEmail("  A@Example.COM "))
}

func TestIdentity_HasCapability(t *testing.T) {
	staff := &Identity{IsActive: true, Capabilities: []Capability{CapabilityCreatePost}}
	assert.True(t, staff.HasCapability(CapabilityCreatePost))
	assert.False(t, staff.HasCapability(CapabilityReviewCandidate))

	super := &Identity{IsActive: true, IsSuperuser: true}
	assert.True(t, super.HasCapability(CapabilityReviewCandidate))

	inactive := &Identity{IsActive: false, IsSuperuser: true}
	assert.False(t, inactive.HasCapability(CapabilityCreatePost))

	var none *Identity
	assert.False(t, none.HasCapability(CapabilityCreatePost))
}

func TestIdentity_ShortName(t *testing.T) {
	assert.Equal(t, "Rahima Begum", (&Identity{Name: " Rahima Begum ", Email: "r@example.com"}).ShortName())
	assert.Equal(t, "rahima", (&Identity{Email: "rahima@example.com"}).ShortName())
}

func TestCandidateInformation_Stage(t *testing.T) {
	c := &CandidateInformation{}
	assert.Equal(t, StageRegistered, c.Stage())
	assert.Len(t, c.MissingSteps(), 5)
	assert.False(t, c.IsComplete())

	id := int64(1)
	c.PersonalInformationID = &id
	assert.Equal(t, StageInProgress, c.Stage())
	assert.Equal(t, []CandidateStep{StepPersonalInformation}, c.CompletedSteps())

	c.PassportInformationID, c.WorkInformationID, c.FamilyDetailsID, c.BOESLInformationID = &id, &id, &id, &id
	assert.Equal(t, StageComplete, c.Stage())
	assert.True(t, c.IsComplete())
	assert.Empty(t, c.MissingSteps())
}

func TestCandidateDetail_JSON(t *testing.T) {
	b, err := json.Marshal(NewCandidateDetail(&CandidateInformation{ID: 7, IdentityID: "abc"}))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "REGISTERED", out["stage"])
	assert.Nil(t, out["personal_information_id"])
	assert.Equal(t, "abc", out["identity_id"])
}

func validPersonalInput() PersonalInformationInput {
	return PersonalInformationInput{
		Name:                    "Abdul Karim",
		NIDNumber:               "1990123456789",
		BloodGroup:              BloodGroupOPos,
		MaritalStatus:           MaritalStatusMarried,
		Religion:                ReligionIslam,
		Sex:                     SexMale,
		DateOfBirth:             "1990-04-14",
		UploadCertificate:       "certificates/abc/ssc.pdf",
		AcademicQualificationID: 2,
		PresentAddress: PresentAddressInput{
			LocalAddress: "House 5", Division: "Dhaka", District: "Dhaka",
			Upazilla: "Mirpur", PostOffice: "Mirpur", PostalCode: "1216",
		},
		PermanentAddress: PermanentAddressInput{
			LocalAddress: "Village Char", Division: "Rajshahi", District: "Bogura",
			Upazilla: "Sherpur", PostOffice: "Sherpur", PostalCode: "5840", YearsAtResidence: 0,
		},
	}
}

func TestPersonalInformationInput_ToEntity(t *testing.T) {
	in := validPersonalInput()
	_, fields := in.ToEntity()
	assert.Equal(t, "Postal code must be exactly 5 digits", fields["present_address.postal_code"])
	assert.Contains(t, fields, "permanent_address.years_at_residence")

	in.PresentAddress.PostalCode = "12160"
	in.PermanentAddress.YearsAtResidence = 20
	in.BloodGroup = "C+"
	_, fields = in.ToEntity()
	assert.Equal(t, map[string]string{"blood_group": "Blood group is not a recognised value"}, fields)

	in.BloodGroup = BloodGroupABNeg
	info, fields := in.ToEntity()
	require.Empty(t, fields)
	assert.Equal(t, "1990-04-14", info.DateOfBirth.String())
	assert.Equal(t, "Dhaka", info.PresentAddress.District)
	assert.Equal(t, 20, info.PermanentAddress.YearsAtResidence)
}

func TestPassportInput_DateOrdering(t *testing.T) {
	in := PassportInput{
		PassportNumber: "EB0123456", IssueDate: "2020-01-10", ExpiryDate: "2030-01-09", IssuePlace: "Dhaka",
		OldPassport: OldPassportInput{
			PassportNumber: "AA1234567", IssueDate: "2015-01-01", ExpiryDate: "2010-01-01", IssuePlace: "Dhaka",
		},
	}
	_, fields := in.ToEntity()
	assert.Equal(t, map[string]string{"old_passport.expiry_date": "Expiry date must be after issue date"}, fields)

	in.OldPassport.ExpiryDate = "2020-01-01"
	p, fields := in.ToEntity()
	require.Empty(t, fields)
	assert.Equal(t, "AA1234567", p.OldPassport.PassportNumber)
}

func TestWorkInput_YearOrdering(t *testing.T) {
	in := WorkInput{
		JobCategory: "Construction", SkillLevel: SkillLevelSkilled, PreferredCountry: "Saudi Arabia",
		PreviousExperiences: []PreviousExperienceInput{
			{CompanyName: "ABC", Designation: "Mason", Country: "Qatar", FromYear: 2019, ToYear: 2017},
		},
	}
	_, fields := in.ToEntity()
	assert.Contains(t, fields, "previous_experiences[0].to_year")

	in.PreviousExperiences[0].ToYear = 2021
	w, fields := in.ToEntity()
	require.Empty(t, fields)
	assert.Len(t, w.PreviousExperiences, 1)
}

func TestWorkInput_FutureYearWinsOverOrdering(t *testing.T) {
	future := time.Now().Year() + 2
	in := WorkInput{
		JobCategory: "Construction", SkillLevel: SkillLevelSkilled, PreferredCountry: "Qatar",
		PreviousExperiences: []PreviousExperienceInput{
			{CompanyName: "ABC", Designation: "Mason", Country: "Qatar", FromYear: future + 1, ToYear: future},
		},
	}
	_, fields := in.ToEntity()
	assert.Equal(t, "To year cannot be in the future", fields["previous_experiences[0].to_year"])
}

func TestCertificateOwnedBy(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"certificates/u1/a.pdf", true},
		{"s3://bucket/certificates/u1/a.jpg", true},
		{"mem://certificates/u1/a.png", true},
		{"certificates/u2/a.pdf", false},
		{"s3://bucket/certificates/u2/a.jpg", false},
		{"certificates/u1/../u2/a.pdf", false},
		{"certificates/u1/", false},
		{"certificates/u10/a.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, CertificateOwnedBy(tt.ref, "u1"))
		})
	}
}

func TestBlankRequiredStrings(t *testing.T) {
	v := validation.New()

	t.Run("Family names", func(t *testing.T) {
		err := v.Struct(FamilyInput{
			FatherName: "   ", MotherName: "  ", EmergencyContactName: " ", EmergencyContactPhone: "01711000000",
		})
		fields := validation.FieldErrors(err)
		assert.Equal(t, "Father's name is required", fields["father_name"])
		assert.Contains(t, fields, "mother_name")
		assert.Contains(t, fields, "emergency_contact_name")
	})

	t.Run("Work", func(t *testing.T) {
		err := v.Struct(WorkInput{JobCategory: "   ", SkillLevel: SkillLevelSkilled, PreferredCountry: "\t"})
		fields := validation.FieldErrors(err)
		assert.Contains(t, fields, "job_category")
		assert.Contains(t, fields, "preferred_country")
	})

	t.Run("Personal information and addresses", func(t *testing.T) {
		in := validPersonalInput()
		in.Name = "  "
		in.PresentAddress.District = " "
		in.PermanentAddress.LocalAddress = "\n"
		fields := validation.FieldErrors(v.Struct(in))
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "present_address.district")
		assert.Contains(t, fields, "permanent_address.local_address")
	})

	t.Run("Passport and BOESL", func(t *testing.T) {
		passport := PassportInput{
			PassportNumber: "EB0123456", IssueDate: "2020-01-10", ExpiryDate: "2030-01-09", IssuePlace: "  ",
			OldPassport: OldPassportInput{PassportNumber: "AA1234567", IssueDate: "2010-01-01", ExpiryDate: "2015-01-01", IssuePlace: " "},
		}
		fields := validation.FieldErrors(v.Struct(passport))
		assert.Contains(t, fields, "issue_place")
		assert.Contains(t, fields, "old_passport.issue_place")

		boesl := BOESLInput{RegistrationNumber: " ", RegistrationDate: "2024-03-01", TrainingCenter: "  "}
		fields = validation.FieldErrors(v.Struct(boesl))
		assert.Contains(t, fields, "registration_number")
		assert.Contains(t, fields, "training_center")
	})

	t.Run("Post", func(t *testing.T) {
		fields := validation.FieldErrors(v.Struct(PostInput{Title: "   ", Description: "\t\n"}))
		assert.Equal(t, "Title is required", fields["title"])
		assert.Equal(t, "Description is required", fields["description"])
	})
}

func TestBOESLInput_ValidUntil(t *testing.T) {
	in := BOESLInput{RegistrationNumber: "R-1", RegistrationDate: "2024-03-01", TrainingCenter: "TTC Dhaka", ValidUntil: "2024-02-01"}
	_, fields := in.ToEntity()
	assert.Contains(t, fields, "valid_until")

	in.ValidUntil = ""
	b, fields := in.ToEntity()
	require.Empty(t, fields)
	assert.Nil(t, b.ValidUntil)
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2001-02-03")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2001-02-03"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestEnums(t *testing.T) {
	assert.True(t, BloodGroup("AB-").IsValid())
	assert.False(t, BloodGroup("ab-").IsValid())
	assert.True(t, MaritalStatusWidowed.IsValid())
	assert.False(t, Religion("").IsValid())
	assert.True(t, SexOther.IsValid())
	assert.True(t, Capability("post:create").IsValid())
	assert.False(t, Capability("post:delete").IsValid())
}
