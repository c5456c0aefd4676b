package domain

import (
	"context"
	"time"
)

// CandidateStep names one section of the intake wizard
type CandidateStep string

const (
	StepPersonalInformation CandidateStep = "personal_information"
	StepPassport            CandidateStep = "passport"
	StepWork                CandidateStep = "work"
	StepFamily              CandidateStep = "family"
	StepBOESL               CandidateStep = "boesl"
)

// CandidateSteps returns the wizard steps in display order
func CandidateSteps() []CandidateStep {
	return []CandidateStep{StepPersonalInformation, StepPassport, StepWork, StepFamily, StepBOESL}
}

type CandidateStage string

const (
	StageRegistered CandidateStage = "REGISTERED"
	StageInProgress CandidateStage = "IN_PROGRESS"
	StageComplete   CandidateStage = "COMPLETE"
)

// CandidateInformation is the aggregate root of a candidate's intake profile.
// Every reference is optional until its step is saved; the aggregate owns the
// referenced rows exclusively.
type CandidateInformation struct {
	ID                    int64     `json:"id"`
	IdentityID            string    `json:"identity_id"`
	PersonalInformationID *int64    `json:"personal_information_id"`
	BOESLInformationID    *int64    `json:"boesl_information_id"`
	PassportInformationID *int64    `json:"passport_information_id"`
	WorkInformationID     *int64    `json:"work_information_id"`
	FamilyDetailsID       *int64    `json:"family_details_id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	PersonalInformation *PersonalInformation `json:"personal_information"`
	BOESLInformation    *BOESLInformation    `json:"boesl_information"`
	PassportInformation *PassportInformation `json:"passport_information"`
	WorkInformation     *WorkInformation     `json:"work_information"`
	FamilyDetails       *FamilyDetails       `json:"family_details"`
}

func (c *CandidateInformation) stepRefs() map[CandidateStep]*int64 {
	return map[CandidateStep]*int64{
		StepPersonalInformation: c.PersonalInformationID,
		StepPassport:            c.PassportInformationID,
		StepWork:                c.WorkInformationID,
		StepFamily:              c.FamilyDetailsID,
		StepBOESL:               c.BOESLInformationID,
	}
}

func (c *CandidateInformation) CompletedSteps() []CandidateStep {
	refs := c.stepRefs()
	done := []CandidateStep{}
	for _, step := range CandidateSteps() {
		if refs[step] != nil {
			done = append(done, step)
		}
	}
	return done
}

func (c *CandidateInformation) MissingSteps() []CandidateStep {
	refs := c.stepRefs()
	missing := []CandidateStep{}
	for _, step := range CandidateSteps() {
		if refs[step] == nil {
			missing = append(missing, step)
		}
	}
	return missing
}

func (c *CandidateInformation) IsComplete() bool {
	return len(c.MissingSteps()) == 0
}

// Stage is derived from the populated references, never stored
func (c *CandidateInformation) Stage() CandidateStage {
	switch len(c.CompletedSteps()) {
	case 0:
		return StageRegistered
	case len(CandidateSteps()):
		return StageComplete
	default:
		return StageInProgress
	}
}

// CandidateDetail is the aggregate plus its derived progress
type CandidateDetail struct {
	*CandidateInformation
	Stage          CandidateStage  `json:"stage"`
	CompletedSteps []CandidateStep `json:"completed_steps"`
	MissingSteps   []CandidateStep `json:"missing_steps"`
}

func NewCandidateDetail(c *CandidateInformation) *CandidateDetail {
	return &CandidateDetail{
		CandidateInformation: c,
		Stage:                c.Stage(),
		CompletedSteps:       c.CompletedSteps(),
		MissingSteps:         c.MissingSteps(),
	}
}

// CandidateSummary is one row of the staff review listing
type CandidateSummary struct {
	CandidateID    int64          `json:"candidate_id"`
	IdentityID     string         `json:"identity_id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	NIDNumber      string         `json:"nid_number,omitempty"`
	PassportNumber string         `json:"passport_number,omitempty"`
	District       string         `json:"district,omitempty"`
	Stage          CandidateStage `json:"stage"`
	CompletedCount int            `json:"completed_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type CandidateFilter struct {
	Search   string         `form:"search"`
	District string         `form:"district"`
	Stage    CandidateStage `form:"stage"`
	Page     int            `form:"page"`
	PageSize int            `form:"page_size"`
}

type CandidateRepository interface {
	// Create inserts the aggregate, or returns the existing one for the identity
	Create(ctx context.Context, identityID string) (*CandidateInformation, bool, error)
	GetByIdentityID(ctx context.Context, identityID string) (*CandidateInformation, error)
	Delete(ctx context.Context, identityID string) error
	List(ctx context.Context, filter CandidateFilter) ([]CandidateSummary, int64, error)

	AttachPersonalInformation(ctx context.Context, identityID string, info *PersonalInformation) error
	AttachPassportInformation(ctx context.Context, identityID string, info *PassportInformation) error
	AttachWorkInformation(ctx context.Context, identityID string, info *WorkInformation) error
	AttachFamilyDetails(ctx context.Context, identityID string, info *FamilyDetails) error
	AttachBOESLInformation(ctx context.Context, identityID string, info *BOESLInformation) error

	GetPersonalInformation(ctx context.Context, id int64) (*PersonalInformation, error)
	GetPassportInformation(ctx context.Context, id int64) (*PassportInformation, error)
	GetWorkInformation(ctx context.Context, id int64) (*WorkInformation, error)
	GetFamilyDetails(ctx context.Context, id int64) (*FamilyDetails, error)
	GetBOESLInformation(ctx context.Context, id int64) (*BOESLInformation, error)
}

type CandidateUsecase interface {
	CreateCandidateRecord(ctx context.Context, identityID string) (*CandidateDetail, bool, error)
	GetCandidate(ctx context.Context, identityID string) (*CandidateDetail, error)
	DeleteCandidate(ctx context.Context, identityID string) error

	AttachPersonalInformation(ctx context.Context, identityID string, input PersonalInformationInput) (*CandidateDetail, error)
	AttachPassportInformation(ctx context.Context, identityID string, input PassportInput) (*CandidateDetail, error)
	AttachWorkInformation(ctx context.Context, identityID string, input WorkInput) (*CandidateDetail, error)
	AttachFamilyDetails(ctx context.Context, identityID string, input FamilyInput) (*CandidateDetail, error)
	AttachBOESLInformation(ctx context.Context, identityID string, input BOESLInput) (*CandidateDetail, error)

	ListCandidates(ctx context.Context, filter CandidateFilter) (*PaginatedResult[CandidateSummary], error)
	ExportCandidates(ctx context.Context, filter CandidateFilter) ([]byte, error)
}
