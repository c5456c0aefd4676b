package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

const candidateColumns = `id, identity_id, personal_information_id, boesl_information_id,
	passport_information_id, work_information_id, family_details_id, created_at, updated_at`

// reference column and owned table per wizard step
var stepTables = map[domain.CandidateStep]struct{ column, table string }{
	domain.StepPersonalInformation: {"personal_information_id", "personal_informations"},
	domain.StepPassport:            {"passport_information_id", "passport_informations"},
	domain.StepWork:                {"work_information_id", "work_informations"},
	domain.StepFamily:              {"family_details_id", "family_details"},
	domain.StepBOESL:               {"boesl_information_id", "boesl_informations"},
}

func scanCandidate(row rowScanner) (*domain.CandidateInformation, error) {
	var c domain.CandidateInformation
	err := row.Scan(
		&c.ID, &c.IdentityID, &c.PersonalInformationID, &c.BOESLInformationID,
		&c.PassportInformationID, &c.WorkInformationID, &c.FamilyDetailsID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create is idempotent: the UNIQUE (identity_id) constraint makes a second
// insert a no-op, and the existing aggregate is returned with created=false.
func (r *candidateRepo) Create(ctx context.Context, identityID string) (*domain.CandidateInformation, bool, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO candidate_informations (identity_id) VALUES ($1)
		ON CONFLICT (identity_id) DO NOTHING
		RETURNING `+candidateColumns, identityID)

	c, err := scanCandidate(row)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if code, _ := pgCode(err); code == pgForeignKeyViolation {
			return nil, false, apperror.NotFound("Identity not found")
		}
		return nil, false, apperror.Internal(err)
	}

	existing, err := r.GetByIdentityID(ctx, identityID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *candidateRepo) GetByIdentityID(ctx context.Context, identityID string) (*domain.CandidateInformation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidate_informations WHERE identity_id = $1`, identityID)
	c, err := scanCandidate(row)
	if err != nil {
		return nil, notFoundOr(err, "Candidate record not found")
	}
	return c, nil
}

// Delete removes the aggregate. The trg_candidate_children trigger removes the
// sub-records it owns in the same statement, and addresses, the old passport
// and previous experiences follow their parents through triggers and FK cascades.
func (r *candidateRepo) Delete(ctx context.Context, identityID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM candidate_informations WHERE identity_id = $1`, identityID)
	if err != nil {
		return notFoundOr(err, "Candidate record not found")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Candidate record not found")
	}
	return nil
}

// attach locks the aggregate row, inserts the new sub-record, repoints the
// reference and deletes the record it replaced, all in one transaction.
func (r *candidateRepo) attach(ctx context.Context, identityID string, step domain.CandidateStep, insert func(tx pgx.Tx) (int64, error)) error {
	target := stepTables[step]

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	var (
		candidateID int64
		previous    *int64
	)
	err = tx.QueryRow(ctx,
		`SELECT id, `+target.column+` FROM candidate_informations WHERE identity_id = $1 FOR UPDATE`,
		identityID,
	).Scan(&candidateID, &previous)
	if err != nil {
		return notFoundOr(err, "Candidate record not found")
	}

	newID, err := insert(tx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE candidate_informations SET `+target.column+` = $2, updated_at = NOW() WHERE id = $1`,
		candidateID, newID)
	if err != nil {
		return apperror.Internal(err)
	}

	if previous != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM `+target.table+` WHERE id = $1`, *previous); err != nil {
			return apperror.Internal(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *candidateRepo) AttachPersonalInformation(ctx context.Context, identityID string, info *domain.PersonalInformation) error {
	return r.attach(ctx, identityID, domain.StepPersonalInformation, func(tx pgx.Tx) (int64, error) {
		present, permanent := &info.PresentAddress, &info.PermanentAddress

		err := tx.QueryRow(ctx,
			`INSERT INTO present_addresses (local_address, division, district, upazilla, post_office, postal_code)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			present.LocalAddress, present.Division, present.District, present.Upazilla, present.PostOffice, present.PostalCode,
		).Scan(&present.ID)
		if err != nil {
			return 0, apperror.Internal(err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO permanent_addresses (local_address, division, district, upazilla, post_office, postal_code, years_at_residence)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			permanent.LocalAddress, permanent.Division, permanent.District, permanent.Upazilla, permanent.PostOffice,
			permanent.PostalCode, permanent.YearsAtResidence,
		).Scan(&permanent.ID)
		if err != nil {
			return 0, apperror.Internal(err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO personal_informations (name, nid_number, blood_group, marital_status, religion, sex,
				email_address, phone_number, present_address_id, permanent_address_id, date_of_birth,
				academic_qualification_id, upload_certificate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at`,
			info.Name, info.NIDNumber, info.BloodGroup, info.MaritalStatus, info.Religion, info.Sex,
			info.EmailAddress, info.PhoneNumber, present.ID, permanent.ID, info.DateOfBirth.Time,
			info.AcademicQualificationID, info.UploadCertificate,
		).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			if code, constraint := pgCode(err); code == pgForeignKeyViolation && strings.Contains(constraint, "academic_qualification") {
				return 0, apperror.NotFound("Academic qualification not found")
			}
			return 0, apperror.Internal(err)
		}
		return info.ID, nil
	})
}

func (r *candidateRepo) AttachPassportInformation(ctx context.Context, identityID string, info *domain.PassportInformation) error {
	return r.attach(ctx, identityID, domain.StepPassport, func(tx pgx.Tx) (int64, error) {
		old := &info.OldPassport
		err := tx.QueryRow(ctx,
			`INSERT INTO old_passport_informations (passport_number, issue_date, expiry_date, issue_place)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			old.PassportNumber, old.IssueDate.Time, old.ExpiryDate.Time, old.IssuePlace,
		).Scan(&old.ID)
		if err != nil {
			return 0, apperror.Internal(err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO passport_informations (passport_number, issue_date, expiry_date, issue_place, old_passport_id)
			VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
			info.PassportNumber, info.IssueDate.Time, info.ExpiryDate.Time, info.IssuePlace, old.ID,
		).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			return 0, apperror.Internal(err)
		}
		return info.ID, nil
	})
}

func (r *candidateRepo) AttachWorkInformation(ctx context.Context, identityID string, info *domain.WorkInformation) error {
	return r.attach(ctx, identityID, domain.StepWork, func(tx pgx.Tx) (int64, error) {
		err := tx.QueryRow(ctx,
			`INSERT INTO work_informations (job_category, skill_level, preferred_country, years_of_experience)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
			info.JobCategory, info.SkillLevel, info.PreferredCountry, info.YearsOfExperience,
		).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			return 0, apperror.Internal(err)
		}

		for i := range info.PreviousExperiences {
			e := &info.PreviousExperiences[i]
			err := tx.QueryRow(ctx,
				`INSERT INTO previous_experiences (work_information_id, company_name, designation, country, from_year, to_year)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				info.ID, e.CompanyName, e.Designation, e.Country, e.FromYear, e.ToYear,
			).Scan(&e.ID)
			if err != nil {
				return 0, apperror.Internal(err)
			}
		}
		return info.ID, nil
	})
}

func (r *candidateRepo) AttachFamilyDetails(ctx context.Context, identityID string, info *domain.FamilyDetails) error {
	return r.attach(ctx, identityID, domain.StepFamily, func(tx pgx.Tx) (int64, error) {
		err := tx.QueryRow(ctx,
			`INSERT INTO family_details (father_name, mother_name, spouse_name, number_of_children,
				emergency_contact_name, emergency_contact_phone)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
			info.FatherName, info.MotherName, info.SpouseName, info.NumberOfChildren,
			info.EmergencyContactName, info.EmergencyContactPhone,
		).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			return 0, apperror.Internal(err)
		}
		return info.ID, nil
	})
}

func (r *candidateRepo) AttachBOESLInformation(ctx context.Context, identityID string, info *domain.BOESLInformation) error {
	return r.attach(ctx, identityID, domain.StepBOESL, func(tx pgx.Tx) (int64, error) {
		var validUntil *time.Time
		if info.ValidUntil != nil {
			validUntil = &info.ValidUntil.Time
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO boesl_informations (registration_number, registration_date, training_center,
				certificate_number, valid_until)
			VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
			info.RegistrationNumber, info.RegistrationDate.Time, info.TrainingCenter, info.CertificateNumber, validUntil,
		).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
		if err != nil {
			return 0, apperror.Internal(err)
		}
		return info.ID, nil
	})
}

func (r *candidateRepo) GetPersonalInformation(ctx context.Context, id int64) (*domain.PersonalInformation, error) {
	var (
		p       domain.PersonalInformation
		q       domain.AcademicQualification
		dob     time.Time
		present = &p.PresentAddress
		perm    = &p.PermanentAddress
	)
	err := r.db.QueryRow(ctx, `
		SELECT pi.id, pi.name, pi.nid_number, pi.blood_group, pi.marital_status, pi.religion, pi.sex,
			pi.email_address, pi.phone_number, pi.date_of_birth, pi.upload_certificate,
			pi.created_at, pi.updated_at,
			pa.id, pa.local_address, pa.division, pa.district, pa.upazilla, pa.post_office, pa.postal_code,
			pm.id, pm.local_address, pm.division, pm.district, pm.upazilla, pm.post_office, pm.postal_code,
			pm.years_at_residence,
			aq.id, aq.name, aq.created_at, aq.updated_at
		FROM personal_informations pi
		JOIN present_addresses pa ON pa.id = pi.present_address_id
		JOIN permanent_addresses pm ON pm.id = pi.permanent_address_id
		JOIN academic_qualifications aq ON aq.id = pi.academic_qualification_id
		WHERE pi.id = $1`, id,
	).Scan(
		&p.ID, &p.Name, &p.NIDNumber, &p.BloodGroup, &p.MaritalStatus, &p.Religion, &p.Sex,
		&p.EmailAddress, &p.PhoneNumber, &dob, &p.UploadCertificate,
		&p.CreatedAt, &p.UpdatedAt,
		&present.ID, &present.LocalAddress, &present.Division, &present.District, &present.Upazilla,
		&present.PostOffice, &present.PostalCode,
		&perm.ID, &perm.LocalAddress, &perm.Division, &perm.District, &perm.Upazilla,
		&perm.PostOffice, &perm.PostalCode, &perm.YearsAtResidence,
		&q.ID, &q.Name, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "Personal information not found")
	}
	p.DateOfBirth = domain.Date{Time: dob}
	p.AcademicQualificationID = q.ID
	p.AcademicQualification = &q
	return &p, nil
}

func (r *candidateRepo) GetPassportInformation(ctx context.Context, id int64) (*domain.PassportInformation, error) {
	var (
		p                                  domain.PassportInformation
		issue, expiry, oldIssue, oldExpiry time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.passport_number, p.issue_date, p.expiry_date, p.issue_place, p.created_at, p.updated_at,
			o.id, o.passport_number, o.issue_date, o.expiry_date, o.issue_place
		FROM passport_informations p
		JOIN old_passport_informations o ON o.id = p.old_passport_id
		WHERE p.id = $1`, id,
	).Scan(
		&p.ID, &p.PassportNumber, &issue, &expiry, &p.IssuePlace, &p.CreatedAt, &p.UpdatedAt,
		&p.OldPassport.ID, &p.OldPassport.PassportNumber, &oldIssue, &oldExpiry, &p.OldPassport.IssuePlace,
	)
	if err != nil {
		return nil, notFoundOr(err, "Passport information not found")
	}
	p.IssueDate, p.ExpiryDate = domain.Date{Time: issue}, domain.Date{Time: expiry}
	p.OldPassport.IssueDate, p.OldPassport.ExpiryDate = domain.Date{Time: oldIssue}, domain.Date{Time: oldExpiry}
	return &p, nil
}

func (r *candidateRepo) GetWorkInformation(ctx context.Context, id int64) (*domain.WorkInformation, error) {
	var w domain.WorkInformation
	err := r.db.QueryRow(ctx, `
		SELECT id, job_category, skill_level, preferred_country, years_of_experience, created_at, updated_at
		FROM work_informations WHERE id = $1`, id,
	).Scan(&w.ID, &w.JobCategory, &w.SkillLevel, &w.PreferredCountry, &w.YearsOfExperience, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "Work information not found")
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, company_name, designation, country, from_year, to_year
		FROM previous_experiences WHERE work_information_id = $1
		ORDER BY from_year DESC, id`, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	w.PreviousExperiences = []domain.PreviousExperience{}
	for rows.Next() {
		var e domain.PreviousExperience
		if err := rows.Scan(&e.ID, &e.CompanyName, &e.Designation, &e.Country, &e.FromYear, &e.ToYear); err != nil {
			return nil, apperror.Internal(err)
		}
		w.PreviousExperiences = append(w.PreviousExperiences, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return &w, nil
}

func (r *candidateRepo) GetFamilyDetails(ctx context.Context, id int64) (*domain.FamilyDetails, error) {
	var f domain.FamilyDetails
	err := r.db.QueryRow(ctx, `
		SELECT id, father_name, mother_name, spouse_name, number_of_children,
			emergency_contact_name, emergency_contact_phone, created_at, updated_at
		FROM family_details WHERE id = $1`, id,
	).Scan(&f.ID, &f.FatherName, &f.MotherName, &f.SpouseName, &f.NumberOfChildren,
		&f.EmergencyContactName, &f.EmergencyContactPhone, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "Family details not found")
	}
	return &f, nil
}

func (r *candidateRepo) GetBOESLInformation(ctx context.Context, id int64) (*domain.BOESLInformation, error) {
	var (
		b          domain.BOESLInformation
		registered time.Time
		validUntil *time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, registration_number, registration_date, training_center, certificate_number,
			valid_until, created_at, updated_at
		FROM boesl_informations WHERE id = $1`, id,
	).Scan(&b.ID, &b.RegistrationNumber, &registered, &b.TrainingCenter, &b.CertificateNumber,
		&validUntil, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "BOESL information not found")
	}
	b.RegistrationDate = domain.Date{Time: registered}
	if validUntil != nil {
		b.ValidUntil = &domain.Date{Time: *validUntil}
	}
	return &b, nil
}

const completedCountExpr = `((c.personal_information_id IS NOT NULL)::int
	+ (c.passport_information_id IS NOT NULL)::int
	+ (c.work_information_id IS NOT NULL)::int
	+ (c.family_details_id IS NOT NULL)::int
	+ (c.boesl_information_id IS NOT NULL)::int)`

// List backs the staff review screen and the XLSX export
func (r *candidateRepo) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.CandidateSummary, int64, error) {
	base := psql.Select().
		From("candidate_informations c").
		Join("identities i ON i.id = c.identity_id").
		LeftJoin("personal_informations pi ON pi.id = c.personal_information_id").
		LeftJoin("present_addresses pa ON pa.id = pi.present_address_id").
		LeftJoin("passport_informations pp ON pp.id = c.passport_information_id")

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		base = base.Where(sq.Or{
			sq.ILike{"i.email": pattern},
			sq.ILike{"pi.name": pattern},
			sq.ILike{"pi.nid_number": pattern},
			sq.ILike{"pp.passport_number": pattern},
		})
	}
	if d := strings.TrimSpace(filter.District); d != "" {
		base = base.Where("lower(pa.district) = lower(?)", d)
	}
	switch filter.Stage {
	case domain.StageRegistered:
		base = base.Where(completedCountExpr + " = 0")
	case domain.StageInProgress:
		base = base.Where(completedCountExpr + " BETWEEN 1 AND 4")
	case domain.StageComplete:
		base = base.Where(completedCountExpr + " = 5")
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	listBuilder := base.Columns(
		"c.id", "c.identity_id", "i.email", "COALESCE(pi.name, i.name)",
		"COALESCE(pi.nid_number, '')", "COALESCE(pp.passport_number, '')", "COALESCE(pa.district, '')",
		completedCountExpr, "c.created_at", "c.updated_at",
	).OrderBy("c.created_at DESC", "c.id DESC")
	if filter.PageSize > 0 {
		listBuilder = listBuilder.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	summaries := []domain.CandidateSummary{}
	for rows.Next() {
		var s domain.CandidateSummary
		if err := rows.Scan(&s.CandidateID, &s.IdentityID, &s.Email, &s.Name, &s.NIDNumber,
			&s.PassportNumber, &s.District, &s.CompletedCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, apperror.Internal(err)
		}
		s.Stage = stageForCount(s.CompletedCount)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return summaries, total, nil
}

func stageForCount(n int) domain.CandidateStage {
	switch {
	case n == 0:
		return domain.StageRegistered
	case n >= len(domain.CandidateSteps()):
		return domain.StageComplete
	default:
		return domain.StageInProgress
	}
}
