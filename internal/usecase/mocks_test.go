package usecase_test

import (
	"context"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/email"
	"go-intake-backend/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockIdentityRepo struct {
	mock.Mock
}

func (m *MockIdentityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	return m.Called(ctx, identity).Error(0)
}
func (m *MockIdentityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}
func (m *MockIdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}
func (m *MockIdentityRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
func (m *MockIdentityRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustReset bool) error {
	return m.Called(ctx, id, passwordHash, mustReset).Error(0)
}
func (m *MockIdentityRepo) SetCapabilities(ctx context.Context, id string, capabilities []domain.Capability) error {
	return m.Called(ctx, id, capabilities).Error(0)
}
func (m *MockIdentityRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockIdentityRepo) List(ctx context.Context, limit, offset int) ([]domain.Identity, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Identity), args.Get(1).(int64), args.Error(2)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, identityID string) (*domain.CandidateInformation, bool, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.CandidateInformation), args.Bool(1), args.Error(2)
}
func (m *MockCandidateRepo) GetByIdentityID(ctx context.Context, identityID string) (*domain.CandidateInformation, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateInformation), args.Error(1)
}
func (m *MockCandidateRepo) Delete(ctx context.Context, identityID string) error {
	return m.Called(ctx, identityID).Error(0)
}
func (m *MockCandidateRepo) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.CandidateSummary, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.CandidateSummary), args.Get(1).(int64), args.Error(2)
}
func (m *MockCandidateRepo) AttachPersonalInformation(ctx context.Context, identityID string, info *domain.PersonalInformation) error {
	return m.Called(ctx, identityID, info).Error(0)
}
func (m *MockCandidateRepo) AttachPassportInformation(ctx context.Context, identityID string, info *domain.PassportInformation) error {
	return m.Called(ctx, identityID, info).Error(0)
}
func (m *MockCandidateRepo) AttachWorkInformation(ctx context.Context, identityID string, info *domain.WorkInformation) error {
	return m.Called(ctx, identityID, info).Error(0)
}
func (m *MockCandidateRepo) AttachFamilyDetails(ctx context.Context, identityID string, info *domain.FamilyDetails) error {
	return m.Called(ctx, identityID, info).Error(0)
}
func (m *MockCandidateRepo) AttachBOESLInformation(ctx context.Context, identityID string, info *domain.BOESLInformation) error {
	return m.Called(ctx, identityID, info).Error(0)
}
func (m *MockCandidateRepo) GetPersonalInformation(ctx context.Context, id int64) (*domain.PersonalInformation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersonalInformation), args.Error(1)
}
func (m *MockCandidateRepo) GetPassportInformation(ctx context.Context, id int64) (*domain.PassportInformation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PassportInformation), args.Error(1)
}
func (m *MockCandidateRepo) GetWorkInformation(ctx context.Context, id int64) (*domain.WorkInformation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkInformation), args.Error(1)
}
func (m *MockCandidateRepo) GetFamilyDetails(ctx context.Context, id int64) (*domain.FamilyDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyDetails), args.Error(1)
}
func (m *MockCandidateRepo) GetBOESLInformation(ctx context.Context, id int64) (*domain.BOESLInformation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BOESLInformation), args.Error(1)
}

type MockQualificationRepo struct {
	mock.Mock
}

func (m *MockQualificationRepo) Create(ctx context.Context, q *domain.AcademicQualification) error {
	return m.Called(ctx, q).Error(0)
}
func (m *MockQualificationRepo) GetByID(ctx context.Context, id int64) (*domain.AcademicQualification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AcademicQualification), args.Error(1)
}
func (m *MockQualificationRepo) List(ctx context.Context) ([]domain.AcademicQualification, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AcademicQualification), args.Error(1)
}

type MockPostRepo struct {
	mock.Mock
}

func (m *MockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}
func (m *MockPostRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Post), args.Error(1)
}

// fakeGuard is an in-memory login tracker
type fakeGuard struct {
	blocked  bool
	failures int
	cleared  int
}

func (g *fakeGuard) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	return g.blocked, nil
}
func (g *fakeGuard) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error) {
	g.failures++
	return false, nil
}
func (g *fakeGuard) ClearAttempts(ctx context.Context, email, ip string) error {
	g.cleared++
	return nil
}

type fakeMailer struct {
	sent []email.CredentialEmailData
	err  error
}

func (f *fakeMailer) SendCredential(ctx context.Context, data email.CredentialEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type memoryStore struct {
	objects map[string]storage.Object
}

func (s *memoryStore) Put(ctx context.Context, obj storage.Object) (string, error) {
	if s.objects == nil {
		s.objects = map[string]storage.Object{}
	}
	s.objects[obj.Key] = obj
	return "mem://" + obj.Key, nil
}
func (s *memoryStore) Delete(ctx context.Context, ref string) error { return nil }
func (s *memoryStore) Name() string                                 { return "memory" }

func asIdentity(identity *domain.Identity) context.Context {
	return domain.WithIdentity(context.Background(), identity)
}
