package access_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

const (
	companyID = "company-1"
	projectID = "project-1"
)

var operator = entity.Actor{UserID: "op-1", Role: entity.RoleSuperAdmin}

type fixture struct {
	store    *store
	provider *fakeProvider
	uc       *access.AccessUseCase
}

func newFixture(t *testing.T, users int, withPassword bool) *fixture {
	t.Helper()
	s := newStore()
	s.companies[companyID] = &entity.Company{ID: companyID, Name: "Clínica Norte", Status: entity.CompanyStatusActive}
	s.projects[projectID] = &entity.Project{
		ID:      projectID,
		Slug:    entity.SlugDoctorPlatform,
		Name:    "Doctor Platform",
		BaseURL: "https://doctor.example.com",
		SSOURL:  "https://doctor.example.com/sso",
	}
	for i := 1; i <= users; i++ {
		u := &entity.User{
			ID:        fmt.Sprintf("u%02d", i),
			CompanyID: companyID,
			Name:      fmt.Sprintf("Usuario %d", i),
			Email:     fmt.Sprintf("u%02d@example.com", i),
			Role:      entity.RoleAgent,
			Status:    entity.UserStatusActive,
		}
		if withPassword {
			u.PasswordCipher = "enc:secreto"
		}
		s.users[u.ID] = u
	}

	p := &fakeProvider{slug: entity.SlugDoctorPlatform, failFor: map[string]error{}}
	registrar := access.NewRegistrar(membershipRepo{s}, prefixCipher{}, nil,
		access.RegistrarConfig{Concurrency: 2, ItemTimeout: time.Second}, zerolog.Nop(), p)
	uc := access.NewAccessUseCase(access.Deps{
		Tx:          txRunner{s},
		Companies:   companyRepo{s},
		Projects:    projectRepo{s},
		Grants:      grantRepo{s},
		Memberships: membershipRepo{s},
		Users:       userRepo{s},
		Cipher:      prefixCipher{},
		Registrar:   registrar,
		SessionTTL:  time.Hour,
		Log:         zerolog.Nop(),
	})
	return &fixture{store: s, provider: p, uc: uc}
}

func TestGrantAccess_DosVecesUnSoloAcceso(t *testing.T) {
	f := newFixture(t, 3, true)
	ctx := context.Background()

	first, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending})
	require.NoError(t, err)
	second, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending, Notes: "segunda"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.grantCount())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "segunda", second.Notes)

	assert.Equal(t, dto.ProvisionStats{Found: 3, Created: 3}, *first.Provisioning)
	assert.Equal(t, dto.ProvisionStats{Found: 3, Existing: 3}, *second.Provisioning)
	assert.Equal(t, 3, f.store.membershipCount())
}

func TestGrantAccess_PendienteNoRegistra(t *testing.T) {
	f := newFixture(t, 2, true)
	out, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending})
	require.NoError(t, err)
	assert.Nil(t, out.RegistrationResult)
	assert.Nil(t, out.ApprovedAt)
	assert.Zero(t, f.provider.calls.Load())
}

func TestGrantAccess_ActivoRegistraUsuarios(t *testing.T) {
	f := newFixture(t, 5, true)
	f.provider.failFor["u03@example.com"] = &access.ExternalError{
		StatusCode: 422,
		Message:    "El email ya existe",
		Details:    map[string][]string{"email": {"ya existe"}},
	}

	out, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.GrantStatusActive, out.Status)
	assert.Equal(t, operator.UserID, out.ApprovedBy)
	require.NotNil(t, out.ApprovedAt)

	res := out.RegistrationResult
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Results.Success, 4)
	require.Len(t, res.Results.Failed, 1)

	failed := res.Results.Failed[0]
	assert.Equal(t, "u03", failed.UserID)
	assert.Equal(t, "El email ya existe", failed.Error)
	assert.Equal(t, []string{"ya existe"}, failed.Details["email"])

	ids := make([]string, 0, len(res.Results.Success))
	for _, s := range res.Results.Success {
		ids = append(ids, s.UserID)
		require.NotNil(t, s.ExternalUserID)
	}
	assert.Equal(t, []string{"u01", "u02", "u04", "u05"}, ids)

	m, err := membershipRepo{f.store}.GetByGrantAndUser(context.Background(), out.ID, "u01")
	require.NoError(t, err)
	require.NotNil(t, m.ExternalUserID)
	assert.Equal(t, "ext-u01", *m.ExternalUserID)
	assert.Equal(t, "doctor", m.ExternalRole)
}

func TestGrantAccess_SinCredencialesNoLlamaAlProveedor(t *testing.T) {
	f := newFixture(t, 4, false)

	out, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusActive})
	require.NoError(t, err)

	res := out.RegistrationResult
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Len(t, res.Results.Failed, 4)
	assert.Empty(t, res.Results.Success)
	for _, fu := range res.Results.Failed {
		assert.Equal(t, "credential unavailable", fu.Error)
	}
	assert.Zero(t, f.provider.opened.Load())
	assert.Zero(t, f.provider.calls.Load())
}

func TestGrantAccess_FalloDeLoteFallaATodos(t *testing.T) {
	f := newFixture(t, 3, true)
	f.provider.openErr = &access.ExternalError{StatusCode: 401, Message: "credenciales de servicio inválidas"}

	out, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{})
	require.NoError(t, err, "un fallo de registro no revierte el acceso")
	assert.Equal(t, 1, f.store.grantCount())
	require.NotNil(t, out.RegistrationResult)
	assert.False(t, out.RegistrationResult.Success)
	assert.Len(t, out.RegistrationResult.Results.Failed, 3)
	assert.Zero(t, f.provider.calls.Load())
}

func TestGrantAccess_EstadoInvalido(t *testing.T) {
	f := newFixture(t, 1, true)
	_, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{Status: "borrado"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, f.store.grantCount())
}

func TestGrantAccess_ProyectoInexistente(t *testing.T) {
	f := newFixture(t, 1, true)
	_, err := f.uc.GrantAccess(context.Background(), operator, companyID, "nope", dto.GrantAccessRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGrantAccess_CredencialesDelAccesoTienenPrioridad(t *testing.T) {
	f := newFixture(t, 1, true)
	f.store.projects[projectID].APIKeyCipher = "enc:llave-proyecto"
	f.store.projects[projectID].APISecretCipher = "enc:secreto-proyecto"

	_, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{
		Credentials: &dto.AccessCredentials{APIKey: "llave-acceso", APISecret: "secreto-acceso"},
	})
	require.NoError(t, err)
	creds := f.provider.credentials()
	require.NotNil(t, creds)
	assert.Equal(t, "llave-acceso", creds.APIKey)
}

func TestGrantAccess_CredencialesDelProyectoComoRespaldo(t *testing.T) {
	f := newFixture(t, 1, true)
	f.store.projects[projectID].APIKeyCipher = "enc:llave-proyecto"
	f.store.projects[projectID].APISecretCipher = "enc:secreto-proyecto"

	_, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{})
	require.NoError(t, err)
	creds := f.provider.credentials()
	require.NotNil(t, creds)
	assert.Equal(t, "llave-proyecto", creds.APIKey)
	assert.Equal(t, "secreto-proyecto", creds.APISecret)
}

func TestRevokeAccess_NoTocaMembresias(t *testing.T) {
	f := newFixture(t, 3, true)
	ctx := context.Background()
	granted, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending})
	require.NoError(t, err)

	out, err := f.uc.RevokeAccess(ctx, operator, companyID, projectID)
	require.NoError(t, err)
	assert.Equal(t, entity.GrantStatusRevoked, out.Status)

	list, err := f.uc.ListProjectMemberships(ctx, companyID, projectID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, m := range list {
		assert.Equal(t, granted.ID, m.GrantID)
		assert.Equal(t, entity.MembershipStatusActive, m.Status)
		assert.NotEmpty(t, m.UserEmail)
	}
}

func TestRevokeAccess_SinAcceso(t *testing.T) {
	f := newFixture(t, 1, true)
	_, err := f.uc.RevokeAccess(context.Background(), operator, companyID, projectID)
	assert.ErrorIs(t, err, domain.ErrGrantNotFound)
}

func TestProvision_UsuarioInactivoNoSeProvisionaNiSeBorra(t *testing.T) {
	f := newFixture(t, 2, true)
	ctx := context.Background()
	_, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending})
	require.NoError(t, err)

	f.store.users["u02"].Status = entity.UserStatusInactive
	f.store.users["u03"] = &entity.User{ID: "u03", CompanyID: companyID, Email: "u03@example.com", Status: entity.UserStatusInactive}

	out, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusPending})
	require.NoError(t, err)
	assert.Equal(t, dto.ProvisionStats{Found: 1, Existing: 1}, *out.Provisioning)
	assert.Equal(t, 2, f.store.membershipCount())
}

func TestReregister_SoloPendientes(t *testing.T) {
	f := newFixture(t, 3, true)
	ctx := context.Background()
	f.provider.failFor["u02@example.com"] = errors.New("timeout")

	out, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{})
	require.NoError(t, err)
	require.Len(t, out.RegistrationResult.Results.Failed, 1)

	delete(f.provider.failFor, "u02@example.com")
	res, err := f.uc.Reregister(ctx, operator, companyID, projectID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "u02", res.Results.Success[0].UserID)
}

func TestReregister_AccesoInactivo(t *testing.T) {
	f := newFixture(t, 1, true)
	ctx := context.Background()
	_, err := f.uc.GrantAccess(ctx, operator, companyID, projectID, dto.GrantAccessRequest{Status: entity.GrantStatusSuspended})
	require.NoError(t, err)
	_, err = f.uc.Reregister(ctx, operator, companyID, projectID)
	assert.ErrorIs(t, err, domain.ErrGrantInactive)
}

func TestRegistrar_RespetaLimiteDeConcurrencia(t *testing.T) {
	f := newFixture(t, 8, true)
	f.provider.delay = 20 * time.Millisecond

	out, err := f.uc.GrantAccess(context.Background(), operator, companyID, projectID, dto.GrantAccessRequest{})
	require.NoError(t, err)
	assert.Len(t, out.RegistrationResult.Results.Success, 8)
	assert.LessOrEqual(t, f.provider.maxFlight.Load(), int32(2))
}

func TestRegistrar_TimeoutPorUsuario(t *testing.T) {
	s := newStore()
	p := &fakeProvider{slug: entity.SlugTGCalabria, delay: 200 * time.Millisecond}
	r := access.NewRegistrar(membershipRepo{s}, prefixCipher{}, nil,
		access.RegistrarConfig{Concurrency: 1, ItemTimeout: 10 * time.Millisecond}, zerolog.Nop(), p)

	target := access.Target{
		Project: &entity.Project{Slug: entity.SlugTGCalabria},
		Grant:   &entity.AccessGrant{CompanyID: companyID},
	}
	res := r.RegisterUsers(context.Background(), target, []access.Member{
		{User: &entity.User{ID: "a", Email: "a@example.com", PasswordCipher: "enc:x"}},
	})
	assert.False(t, res.Success)
	require.Len(t, res.Results.Failed, 1)
	assert.Contains(t, res.Results.Failed[0].Error, "tiempo de espera")
}

func TestRegistrar_MembresiaNoGuardadaEsFallo(t *testing.T) {
	s := newStore()
	p := &fakeProvider{slug: entity.SlugTGCalabria}
	r := access.NewRegistrar(brokenMemberships{membershipRepo{s}}, prefixCipher{}, nil,
		access.RegistrarConfig{Concurrency: 1, ItemTimeout: time.Second}, zerolog.Nop(), p)

	target := access.Target{
		Project: &entity.Project{Slug: entity.SlugTGCalabria},
		Grant:   &entity.AccessGrant{ID: "g1", CompanyID: companyID},
	}
	res := r.RegisterUsers(context.Background(), target, []access.Member{{
		User:       &entity.User{ID: "a", Email: "a@example.com", PasswordCipher: "enc:x"},
		Membership: &entity.ProjectMembership{ID: "m1", GrantID: "g1", UserID: "a"},
	}})

	assert.False(t, res.Success)
	assert.Empty(t, res.Results.Success)
	require.Len(t, res.Results.Failed, 1)
	assert.Contains(t, res.Results.Failed[0].Error, "no se pudo guardar")
	assert.Contains(t, res.Results.Failed[0].Error, "db down")
	assert.Equal(t, []string{"ext-a"}, res.Results.Failed[0].Details["external_user_id"])
}

func TestRegistrar_TokenDeAltaSinExpUsaVigenciaPorDefecto(t *testing.T) {
	s := newStore()
	p := &fakeProvider{slug: entity.SlugDoctorPlatform, regToken: "opaco"}
	r := access.NewRegistrar(membershipRepo{s}, prefixCipher{}, nil,
		access.RegistrarConfig{Concurrency: 1, ItemTimeout: time.Second, SessionTTL: 2 * time.Hour}, zerolog.Nop(), p)

	target := access.Target{
		Project: &entity.Project{Slug: entity.SlugDoctorPlatform},
		Grant:   &entity.AccessGrant{ID: "g1", CompanyID: companyID},
	}
	before := time.Now()
	res := r.RegisterUsers(context.Background(), target, []access.Member{{
		User:       &entity.User{ID: "a", Email: "a@example.com", PasswordCipher: "enc:x"},
		Membership: &entity.ProjectMembership{ID: "m1", GrantID: "g1", UserID: "a"},
	}})
	require.True(t, res.Success)

	m, err := membershipRepo{s}.GetByGrantAndUser(context.Background(), "g1", "a")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "opaco", m.ExternalSessionToken)
	require.NotNil(t, m.ExternalTokenExpiresAt)
	assert.WithinDuration(t, before.Add(2*time.Hour), *m.ExternalTokenExpiresAt, time.Minute)
	assert.True(t, m.HasValidSession(time.Now()))
}
