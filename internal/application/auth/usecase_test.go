package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crm-portal-api/internal/application/auth"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/repository"
	pkgjwt "github.com/jhoicas/crm-portal-api/pkg/jwt"
)

const secret = "auth-test-secret"

type userRepo struct {
	repository.UserRepository
	byEmail map[string]*entity.User
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type companyRepo struct {
	repository.CompanyRepository
	byID map[string]*entity.Company
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.byID[id], nil
}

func newAuth(t *testing.T, companyStatus, userStatus string) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	users := userRepo{byEmail: map[string]*entity.User{
		"ana@norte.co": {ID: "u1", CompanyID: "c1", Email: "ana@norte.co", Name: "Ana", Role: entity.RoleAdmin, Status: userStatus, PasswordHash: string(hash)},
		"ops@crm.io":   {ID: "u0", Email: "ops@crm.io", Role: entity.RoleSuperAdmin, Status: entity.UserStatusActive, PasswordHash: string(hash)},
	}}
	companies := companyRepo{byID: map[string]*entity.Company{
		"c1": {ID: "c1", Name: "Norte", Status: companyStatus, SubscriptionStatus: entity.SubscriptionStatusNone},
	}}
	return auth.NewAuthUseCase(users, companies, auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
}

func TestLogin_TokenConClaims(t *testing.T) {
	uc := newAuth(t, entity.CompanyStatusPending, entity.UserStatusActive)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: " Ana@Norte.co ", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
	assert.Equal(t, "ana@norte.co", out.User.Email)
}

func TestLogin_SuperAdminSinEmpresa(t *testing.T) {
	uc := newAuth(t, entity.CompanyStatusActive, entity.UserStatusActive)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ops@crm.io", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Empty(t, claims.CompanyID)
	assert.Equal(t, entity.RoleSuperAdmin, claims.Role)
}

func TestLogin_Rechazos(t *testing.T) {
	ctx := context.Background()

	_, err := newAuth(t, entity.CompanyStatusActive, entity.UserStatusActive).
		Login(ctx, dto.LoginRequest{Email: "ana@norte.co", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = newAuth(t, entity.CompanyStatusActive, entity.UserStatusActive).
		Login(ctx, dto.LoginRequest{Email: "nadie@norte.co", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = newAuth(t, entity.CompanyStatusActive, entity.UserStatusInactive).
		Login(ctx, dto.LoginRequest{Email: "ana@norte.co", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = newAuth(t, entity.CompanyStatusRejected, entity.UserStatusActive).
		Login(ctx, dto.LoginRequest{Email: "ana@norte.co", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe_IncluyeEstadoDeEmpresa(t *testing.T) {
	uc := newAuth(t, entity.CompanyStatusApproved, entity.UserStatusActive)

	out, err := uc.Me(context.Background(), entity.Actor{UserID: "u1", CompanyID: "c1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, out.Company)
	assert.Equal(t, entity.CompanyStatusApproved, out.Company.Status)
	assert.Equal(t, entity.SubscriptionStatusNone, out.Company.SubscriptionStatus)

	_, err = uc.Me(context.Background(), entity.Actor{UserID: "missing"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
