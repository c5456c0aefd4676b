//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/internal/repository/postgres"
	"go-intake-backend/migrations"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type RepositorySuite struct {
	suite.Suite
	container  *tcpostgres.PostgresContainer
	db         *pgxpool.Pool
	identities domain.IdentityRepository
	candidates domain.CandidateRepository
	quals      domain.AcademicQualificationRepository
	posts      domain.PostRepository
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("intake"),
		tcpostgres.WithUsername("intake"),
		tcpostgres.WithPassword("intake"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = database.NewPostgresConnection(ctx, dsn)
	s.Require().NoError(err)

	_, err = database.NewMigrator(s.db, migrations.FS).Up(ctx)
	s.Require().NoError(err)

	s.identities = postgres.NewIdentityRepository(s.db)
	s.candidates = postgres.NewCandidateRepository(s.db)
	s.quals = postgres.NewAcademicQualificationRepository(s.db)
	s.posts = postgres.NewPostRepository(s.db)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.db.Exec(context.Background(), `TRUNCATE identities, posts, candidate_informations, personal_informations,
		present_addresses, permanent_addresses, passport_informations, old_passport_informations,
		work_informations, previous_experiences, family_details, boesl_informations CASCADE`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) newIdentity(email string) *domain.Identity {
	identity := &domain.Identity{
		Email:        email,
		PasswordHash: "$2a$04$hash",
		IsActive:     true,
		Capabilities: []domain.Capability{domain.CapabilityCreatePost},
	}
	s.Require().NoError(s.identities.Create(context.Background(), identity))
	return identity
}

func (s *RepositorySuite) count(table string) int {
	var n int
	s.Require().NoError(s.db.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func (s *RepositorySuite) TestDuplicateEmailIsAFieldConflict() {
	s.newIdentity("dup@example.com")

	err := s.identities.Create(context.Background(), &domain.Identity{Email: "dup@example.com", PasswordHash: "x", IsActive: true})
	s.Require().Error(err)
	s.True(apperror.IsKind(err, apperror.KindValidation))

	appErr, ok := err.(*apperror.AppError)
	s.Require().True(ok)
	s.Contains(appErr.Fields, "email")
}

func (s *RepositorySuite) TestConcurrentSignupsWithOneEmail() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var created, conflicts atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.identities.Create(ctx, &domain.Identity{Email: "race@example.com", PasswordHash: "x", IsActive: true})
			switch {
			case err == nil:
				created.Add(1)
			case apperror.IsKind(err, apperror.KindValidation):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *RepositorySuite) TestCapabilitiesRoundTrip() {
	ctx := context.Background()
	identity := s.newIdentity("caps@example.com")

	err := s.identities.SetCapabilities(ctx, identity.ID, []domain.Capability{domain.CapabilityReviewCandidate})
	s.Require().NoError(err)

	got, err := s.identities.GetByEmail(ctx, "caps@example.com")
	s.Require().NoError(err)
	s.Equal([]domain.Capability{domain.CapabilityReviewCandidate}, got.Capabilities)
}

func (s *RepositorySuite) TestUnknownIdentityIsNotFound() {
	_, err := s.identities.GetByID(context.Background(), uuid.NewString())
	s.True(apperror.IsKind(err, apperror.KindNotFound))

	_, err = s.identities.GetByID(context.Background(), "not-a-uuid")
	s.True(apperror.IsKind(err, apperror.KindNotFound))
}

func (s *RepositorySuite) personalInformation() *domain.PersonalInformation {
	quals, err := s.quals.List(context.Background())
	s.Require().NoError(err)
	s.Require().NotEmpty(quals)

	dob, _ := domain.ParseDate("1995-04-12")
	return &domain.PersonalInformation{
		Name:              "Rahim Uddin",
		NIDNumber:         "1234567890",
		BloodGroup:        domain.BloodGroupOPos,
		MaritalStatus:     domain.MaritalStatusSingle,
		Religion:          domain.ReligionIslam,
		Sex:               domain.SexMale,
		DateOfBirth:       dob,
		UploadCertificate: "local://certificates/a.jpg",
		PresentAddress: domain.PresentAddress{AddressFields: domain.AddressFields{
			LocalAddress: "House 12", Division: "Dhaka", District: "Dhaka",
			Upazilla: "Mirpur", PostOffice: "Mirpur", PostalCode: "12160",
		}},
		PermanentAddress: domain.PermanentAddress{
			AddressFields: domain.AddressFields{
				LocalAddress: "Village Road", Division: "Khulna", District: "Jessore",
				Upazilla: "Sadar", PostOffice: "Jessore", PostalCode: "7400",
			},
			YearsAtResidence: 10,
		},
		AcademicQualificationID: quals[0].ID,
	}
}

func (s *RepositorySuite) TestAttachPopulatesOnlyOneReference() {
	ctx := context.Background()
	identity := s.newIdentity("cand@example.com")

	_, created, err := s.candidates.Create(ctx, identity.ID)
	s.Require().NoError(err)
	s.True(created)

	_, created, err = s.candidates.Create(ctx, identity.ID)
	s.Require().NoError(err)
	s.False(created)

	s.Require().NoError(s.candidates.AttachPersonalInformation(ctx, identity.ID, s.personalInformation()))

	c, err := s.candidates.GetByIdentityID(ctx, identity.ID)
	s.Require().NoError(err)
	s.NotNil(c.PersonalInformationID)
	s.Nil(c.PassportInformationID)
	s.Nil(c.WorkInformationID)
	s.Nil(c.FamilyDetailsID)
	s.Nil(c.BOESLInformationID)

	info, err := s.candidates.GetPersonalInformation(ctx, *c.PersonalInformationID)
	s.Require().NoError(err)
	s.Equal("12160", info.PresentAddress.PostalCode)
	s.NotNil(info.AcademicQualification)

	// replacing the section removes the old row and its addresses
	s.Require().NoError(s.candidates.AttachPersonalInformation(ctx, identity.ID, s.personalInformation()))
	s.Equal(1, s.count("personal_informations"))
	s.Equal(1, s.count("present_addresses"))
	s.Equal(1, s.count("permanent_addresses"))
}

func (s *RepositorySuite) TestUnknownQualificationIsNotFound() {
	ctx := context.Background()
	identity := s.newIdentity("noqual@example.com")
	_, _, err := s.candidates.Create(ctx, identity.ID)
	s.Require().NoError(err)

	info := s.personalInformation()
	info.AcademicQualificationID = 999999
	err = s.candidates.AttachPersonalInformation(ctx, identity.ID, info)
	s.True(apperror.IsKind(err, apperror.KindNotFound))
	s.Equal(0, s.count("personal_informations"))
}

func (s *RepositorySuite) TestDeletingIdentityCascades() {
	ctx := context.Background()
	identity := s.newIdentity("gone@example.com")
	qualsBefore := s.count("academic_qualifications")

	_, _, err := s.candidates.Create(ctx, identity.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.candidates.AttachPersonalInformation(ctx, identity.ID, s.personalInformation()))

	issue, _ := domain.ParseDate("2020-01-01")
	expiry, _ := domain.ParseDate("2030-01-01")
	oldIssue, _ := domain.ParseDate("2010-01-01")
	oldExpiry, _ := domain.ParseDate("2015-01-01")
	s.Require().NoError(s.candidates.AttachPassportInformation(ctx, identity.ID, &domain.PassportInformation{
		PassportNumber: "A1234567", IssueDate: issue, ExpiryDate: expiry, IssuePlace: "Dhaka",
		OldPassport: domain.OldPassportInformation{
			PassportNumber: "B7654321", IssueDate: oldIssue, ExpiryDate: oldExpiry, IssuePlace: "Dhaka",
		},
	}))
	s.Require().NoError(s.posts.Create(ctx, &domain.Post{AuthorID: identity.ID, Title: "t", Description: "d"}))

	s.Require().NoError(s.identities.Delete(ctx, identity.ID))

	for _, table := range []string{
		"candidate_informations", "personal_informations", "present_addresses", "permanent_addresses",
		"passport_informations", "old_passport_informations", "posts",
	} {
		s.Equal(0, s.count(table), table)
	}
	s.Equal(qualsBefore, s.count("academic_qualifications"))
}

func (s *RepositorySuite) TestDeletingCandidateRemovesOwnedRecords() {
	ctx := context.Background()
	identity := s.newIdentity("withdraw@example.com")

	_, _, err := s.candidates.Create(ctx, identity.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.candidates.AttachPersonalInformation(ctx, identity.ID, s.personalInformation()))

	s.Require().NoError(s.candidates.Delete(ctx, identity.ID))
	for _, table := range []string{"candidate_informations", "personal_informations", "present_addresses", "permanent_addresses"} {
		s.Equal(0, s.count(table), table)
	}
	s.Equal(1, s.count("identities"))

	err = s.candidates.Delete(ctx, identity.ID)
	s.True(apperror.IsKind(err, apperror.KindNotFound))
}

func (s *RepositorySuite) TestPostsListNewestFirst() {
	ctx := context.Background()
	author := s.newIdentity("writer@example.com")
	for _, title := range []string{"first", "second"} {
		s.Require().NoError(s.posts.Create(ctx, &domain.Post{AuthorID: author.ID, Title: title, Description: "d"}))
		time.Sleep(5 * time.Millisecond)
	}

	posts, err := s.posts.List(ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.Equal("second", posts[0].Title)
	s.Equal("writer", posts[0].AuthorName)
}
