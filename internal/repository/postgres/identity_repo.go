package postgres

import (
	"context"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type identityRepo struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) domain.IdentityRepository {
	return &identityRepo{db: db}
}

const identityColumns = `id, email, name, password_hash, is_active, is_staff, is_superuser,
	capabilities, must_reset_password, date_joined, last_login, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*domain.Identity, error) {
	var (
		identity domain.Identity
		caps     []string
	)
	err := row.Scan(
		&identity.ID, &identity.Email, &identity.Name, &identity.PasswordHash,
		&identity.IsActive, &identity.IsStaff, &identity.IsSuperuser,
		pq.Array(&caps), &identity.MustResetPassword,
		&identity.DateJoined, &identity.LastLogin, &identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	identity.Capabilities = make([]domain.Capability, 0, len(caps))
	for _, c := range caps {
		identity.Capabilities = append(identity.Capabilities, domain.Capability(c))
	}
	return &identity, nil
}

func capabilityStrings(caps []domain.Capability) []string {
	out := make([]string, 0, len(caps))
	for _, c := range caps {
		out = append(out, string(c))
	}
	return out
}

// Create relies on the unique index for concurrent signups with one email;
// the loser gets a Conflict on the email field.
func (r *identityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	query := `INSERT INTO identities (email, name, password_hash, is_active, is_staff, is_superuser,
			capabilities, must_reset_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, date_joined, updated_at`

	err := r.db.QueryRow(ctx, query,
		identity.Email, identity.Name, identity.PasswordHash,
		identity.IsActive, identity.IsStaff, identity.IsSuperuser,
		pq.Array(capabilityStrings(identity.Capabilities)), identity.MustResetPassword,
	).Scan(&identity.ID, &identity.DateJoined, &identity.UpdatedAt)
	if err != nil {
		if code, _ := pgCode(err); code == pgUniqueViolation {
			return apperror.Conflict("email", "An account with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *identityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
	identity, err := scanIdentity(row)
	if err != nil {
		return nil, notFoundOr(err, "Identity not found")
	}
	return identity, nil
}

func (r *identityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email)
	identity, err := scanIdentity(row)
	if err != nil {
		return nil, notFoundOr(err, "Identity not found")
	}
	return identity, nil
}

func (r *identityRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE identities SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *identityRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustReset bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE identities SET password_hash = $2, must_reset_password = $3, updated_at = NOW() WHERE id = $1`,
		id, passwordHash, mustReset)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Identity not found")
	}
	return nil
}

func (r *identityRepo) SetCapabilities(ctx context.Context, id string, capabilities []domain.Capability) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE identities SET capabilities = $2, updated_at = NOW() WHERE id = $1`,
		id, pq.Array(capabilityStrings(capabilities)))
	if err != nil {
		return notFoundOr(err, "Identity not found")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Identity not found")
	}
	return nil
}

// Delete removes the identity; posts and the candidate aggregate go with it
// through FK cascades, and the aggregate's trigger removes its sub-records.
func (r *identityRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, "Identity not found")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Identity not found")
	}
	return nil
}

func (r *identityRepo) List(ctx context.Context, limit, offset int) ([]domain.Identity, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	query, args, err := psql.Select(identityColumns).
		From("identities").
		OrderBy("date_joined DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	identities := []domain.Identity{}
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, 0, apperror.Internal(err)
		}
		identities = append(identities, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return identities, total, nil
}
