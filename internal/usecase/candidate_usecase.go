package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

const exportSheetName = "Candidates"

// exportRowLimit bounds a single workbook
const exportRowLimit = 5000

type candidateUsecase struct {
	repo     domain.CandidateRepository
	qualRepo domain.AcademicQualificationRepository
	validate *validator.Validate
	metrics  *metrics.Metrics
}

func NewCandidateUsecase(
	repo domain.CandidateRepository,
	qualRepo domain.AcademicQualificationRepository,
	validate *validator.Validate,
	m *metrics.Metrics,
) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:     repo,
		qualRepo: qualRepo,
		validate: validate,
		metrics:  m,
	}
}

func (u *candidateUsecase) CreateCandidateRecord(ctx context.Context, identityID string) (*domain.CandidateDetail, bool, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, false, err
	}

	candidate, created, err := u.repo.Create(ctx, identityID)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Log.Info("candidate record created", "identity_id", identityID, "candidate_id", candidate.ID)
		return domain.NewCandidateDetail(candidate), true, nil
	}

	if err := u.loadSections(ctx, candidate); err != nil {
		return nil, false, err
	}
	return domain.NewCandidateDetail(candidate), false, nil
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, identityID string) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}
	return u.reload(ctx, identityID)
}

func (u *candidateUsecase) DeleteCandidate(ctx context.Context, identityID string) error {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, identityID); err != nil {
		return err
	}
	logger.Log.Info("candidate record deleted", "identity_id", identityID)
	return nil
}

func (u *candidateUsecase) AttachPersonalInformation(ctx context.Context, identityID string, input domain.PersonalInformationInput) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	info, fields := input.ToEntity()
	if input.UploadCertificate != "" && !domain.CertificateOwnedBy(input.UploadCertificate, identityID) {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["upload_certificate"] = "Certificate must be one you uploaded"
	}
	if err := validateInput(u.validate, input, fields); err != nil {
		return nil, err
	}

	qualification, err := u.qualRepo.GetByID(ctx, info.AcademicQualificationID)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("Academic qualification not found")
		}
		return nil, err
	}
	info.AcademicQualification = qualification

	if err := u.repo.AttachPersonalInformation(ctx, identityID, info); err != nil {
		return nil, err
	}
	return u.afterAttach(ctx, identityID, domain.StepPersonalInformation)
}

func (u *candidateUsecase) AttachPassportInformation(ctx context.Context, identityID string, input domain.PassportInput) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	info, fields := input.ToEntity()
	if err := validateInput(u.validate, input, fields); err != nil {
		return nil, err
	}

	if err := u.repo.AttachPassportInformation(ctx, identityID, info); err != nil {
		return nil, err
	}
	return u.afterAttach(ctx, identityID, domain.StepPassport)
}

func (u *candidateUsecase) AttachWorkInformation(ctx context.Context, identityID string, input domain.WorkInput) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	info, fields := input.ToEntity()
	if err := validateInput(u.validate, input, fields); err != nil {
		return nil, err
	}

	if err := u.repo.AttachWorkInformation(ctx, identityID, info); err != nil {
		return nil, err
	}
	return u.afterAttach(ctx, identityID, domain.StepWork)
}

func (u *candidateUsecase) AttachFamilyDetails(ctx context.Context, identityID string, input domain.FamilyInput) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	info, fields := input.ToEntity()
	if err := validateInput(u.validate, input, fields); err != nil {
		return nil, err
	}

	if err := u.repo.AttachFamilyDetails(ctx, identityID, info); err != nil {
		return nil, err
	}
	return u.afterAttach(ctx, identityID, domain.StepFamily)
}

func (u *candidateUsecase) AttachBOESLInformation(ctx context.Context, identityID string, input domain.BOESLInput) (*domain.CandidateDetail, error) {
	if _, err := requireOwner(ctx, identityID); err != nil {
		return nil, err
	}

	info, fields := input.ToEntity()
	if err := validateInput(u.validate, input, fields); err != nil {
		return nil, err
	}

	if err := u.repo.AttachBOESLInformation(ctx, identityID, info); err != nil {
		return nil, err
	}
	return u.afterAttach(ctx, identityID, domain.StepBOESL)
}

func (u *candidateUsecase) afterAttach(ctx context.Context, identityID string, step domain.CandidateStep) (*domain.CandidateDetail, error) {
	u.metrics.IncCandidateStep(string(step))
	logger.Log.Info("candidate step saved", "identity_id", identityID, "step", step)
	return u.reload(ctx, identityID)
}

func (u *candidateUsecase) reload(ctx context.Context, identityID string) (*domain.CandidateDetail, error) {
	candidate, err := u.repo.GetByIdentityID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if err := u.loadSections(ctx, candidate); err != nil {
		return nil, err
	}
	return domain.NewCandidateDetail(candidate), nil
}

// loadSections fetches every populated sub-record concurrently
func (u *candidateUsecase) loadSections(ctx context.Context, c *domain.CandidateInformation) error {
	g, gctx := errgroup.WithContext(ctx)

	if c.PersonalInformationID != nil {
		id := *c.PersonalInformationID
		g.Go(func() error {
			info, err := u.repo.GetPersonalInformation(gctx, id)
			c.PersonalInformation = info
			return err
		})
	}
	if c.PassportInformationID != nil {
		id := *c.PassportInformationID
		g.Go(func() error {
			info, err := u.repo.GetPassportInformation(gctx, id)
			c.PassportInformation = info
			return err
		})
	}
	if c.WorkInformationID != nil {
		id := *c.WorkInformationID
		g.Go(func() error {
			info, err := u.repo.GetWorkInformation(gctx, id)
			c.WorkInformation = info
			return err
		})
	}
	if c.FamilyDetailsID != nil {
		id := *c.FamilyDetailsID
		g.Go(func() error {
			info, err := u.repo.GetFamilyDetails(gctx, id)
			c.FamilyDetails = info
			return err
		})
	}
	if c.BOESLInformationID != nil {
		id := *c.BOESLInformationID
		g.Go(func() error {
			info, err := u.repo.GetBOESLInformation(gctx, id)
			c.BOESLInformation = info
			return err
		})
	}

	return g.Wait()
}

func (u *candidateUsecase) requireReviewer(ctx context.Context) error {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	if !identity.HasCapability(domain.CapabilityReviewCandidate) {
		return apperror.Forbidden("You do not have permission to review candidates")
	}
	return nil
}

func (u *candidateUsecase) ListCandidates(ctx context.Context, filter domain.CandidateFilter) (*domain.PaginatedResult[domain.CandidateSummary], error) {
	if err := u.requireReviewer(ctx); err != nil {
		return nil, err
	}
	if filter.Stage != "" && !isKnownStage(filter.Stage) {
		return nil, apperror.FieldError("stage", "Stage is not a recognised value")
	}
	filter.Page, filter.PageSize = domain.NormalizePage(filter.Page, filter.PageSize)

	rows, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(rows, total, filter.Page, filter.PageSize), nil
}

func isKnownStage(s domain.CandidateStage) bool {
	switch s {
	case domain.StageRegistered, domain.StageInProgress, domain.StageComplete:
		return true
	}
	return false
}

// ExportCandidates renders the filtered listing as an xlsx workbook
func (u *candidateUsecase) ExportCandidates(ctx context.Context, filter domain.CandidateFilter) ([]byte, error) {
	if err := u.requireReviewer(ctx); err != nil {
		return nil, err
	}
	if filter.Stage != "" && !isKnownStage(filter.Stage) {
		return nil, apperror.FieldError("stage", "Stage is not a recognised value")
	}
	filter.Page = 1
	filter.PageSize = exportRowLimit

	rows, _, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", exportSheetName)

	headers := []string{"Candidate ID", "Email", "Name", "NID Number", "Passport Number", "District", "Stage", "Completed Steps", "Registered At", "Updated At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(exportSheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		values := []interface{}{
			row.CandidateID,
			row.Email,
			row.Name,
			row.NIDNumber,
			row.PassportNumber,
			row.District,
			string(row.Stage),
			fmt.Sprintf("%d/%d", row.CompletedCount, len(domain.CandidateSteps())),
			row.CreatedAt.Format(time.DateTime),
			row.UpdatedAt.Format(time.DateTime),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(exportSheetName, cell, value)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(fmt.Errorf("write candidate workbook: %w", err))
	}
	return buf.Bytes(), nil
}
