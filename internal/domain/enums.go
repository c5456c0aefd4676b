package domain

type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

func ValidBloodGroups() []BloodGroup {
	return []BloodGroup{
		BloodGroupAPos, BloodGroupANeg, BloodGroupBPos, BloodGroupBNeg,
		BloodGroupABPos, BloodGroupABNeg, BloodGroupOPos, BloodGroupONeg,
	}
}

func (b BloodGroup) IsValid() bool {
	for _, valid := range ValidBloodGroups() {
		if b == valid {
			return true
		}
	}
	return false
}

type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "SINGLE"
	MaritalStatusMarried  MaritalStatus = "MARRIED"
	MaritalStatusDivorced MaritalStatus = "DIVORCED"
	MaritalStatusWidowed  MaritalStatus = "WIDOWED"
)

func ValidMaritalStatuses() []MaritalStatus {
	return []MaritalStatus{MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed}
}

func (m MaritalStatus) IsValid() bool {
	for _, valid := range ValidMaritalStatuses() {
		if m == valid {
			return true
		}
	}
	return false
}

type Religion string

const (
	ReligionIslam        Religion = "ISLAM"
	ReligionHinduism     Religion = "HINDUISM"
	ReligionBuddhism     Religion = "BUDDHISM"
	ReligionChristianity Religion = "CHRISTIANITY"
	ReligionOther        Religion = "OTHER"
)

func ValidReligions() []Religion {
	return []Religion{ReligionIslam, ReligionHinduism, ReligionBuddhism, ReligionChristianity, ReligionOther}
}

func (r Religion) IsValid() bool {
	for _, valid := range ValidReligions() {
		if r == valid {
			return true
		}
	}
	return false
}

type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexOther  Sex = "OTHER"
)

func ValidSexes() []Sex {
	return []Sex{SexMale, SexFemale, SexOther}
}

func (s Sex) IsValid() bool {
	for _, valid := range ValidSexes() {
		if s == valid {
			return true
		}
	}
	return false
}

// SkillLevel follows the BMET worker classification
type SkillLevel string

const (
	SkillLevelUnskilled    SkillLevel = "UNSKILLED"
	SkillLevelSemiSkilled  SkillLevel = "SEMI_SKILLED"
	SkillLevelSkilled      SkillLevel = "SKILLED"
	SkillLevelProfessional SkillLevel = "PROFESSIONAL"
)

func ValidSkillLevels() []SkillLevel {
	return []SkillLevel{SkillLevelUnskilled, SkillLevelSemiSkilled, SkillLevelSkilled, SkillLevelProfessional}
}

func (s SkillLevel) IsValid() bool {
	for _, valid := range ValidSkillLevels() {
		if s == valid {
			return true
		}
	}
	return false
}
