package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/domain/subscription"
	apphttp "github.com/jhoicas/crm-portal-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/crm-portal-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Gate de suscripción
// ──────────────────────────────────────────────────────────────────────────────

type stubCompanies struct {
	company *entity.Company
	err     error
	calls   int
}

func (s *stubCompanies) GetByID(context.Context, string) (*entity.Company, error) {
	s.calls++
	return s.company, s.err
}

type countingObserver struct {
	statuses []string
}

func (o *countingObserver) ObserveGateRejection(status string) {
	o.statuses = append(o.statuses, status)
}

func buildGateApp(companies *stubCompanies, obs *countingObserver) *fiber.App {
	app := fiber.New()
	protected := app.Group("/api",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.SubscriptionGate(subscription.NewGate(), companies, obs),
	)
	ok := func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) }
	protected.Get("/users", ok)
	protected.Get("/subscription", ok)
	protected.Get("/me", ok)
	return app
}

func gateRequest(t *testing.T, app *fiber.App, path, role, companyID string) *http.Response {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSubscriptionGate_EmpresaActivaPasa(t *testing.T) {
	companies := &stubCompanies{company: &entity.Company{ID: testCompanyID, SubscriptionStatus: entity.SubscriptionStatusActive}}
	app := buildGateApp(companies, &countingObserver{})

	resp := gateRequest(t, app, "/api/users", "admin", testCompanyID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubscriptionGate_CodigosPorEstado(t *testing.T) {
	cases := []struct {
		status string
		code   string
	}{
		{entity.SubscriptionStatusApproved, subscription.CodeSubscriptionRequired},
		{entity.SubscriptionStatusPastDue, subscription.CodePaymentFailed},
		{entity.SubscriptionStatusCanceled, subscription.CodeActiveSubscriptionRequired},
		{entity.SubscriptionStatusNone, subscription.CodeActiveSubscriptionRequired},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			obs := &countingObserver{}
			companies := &stubCompanies{company: &entity.Company{ID: testCompanyID, SubscriptionStatus: tc.status}}
			app := buildGateApp(companies, obs)

			resp := gateRequest(t, app, "/api/users", "admin", testCompanyID)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

			var body dto.PaymentRequiredResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.status, body.SubscriptionStatus)
			assert.Equal(t, []string{tc.status}, obs.statuses)
		})
	}
}

func TestSubscriptionGate_AllowListPasaSinSuscripcion(t *testing.T) {
	companies := &stubCompanies{company: &entity.Company{ID: testCompanyID, SubscriptionStatus: entity.SubscriptionStatusApproved}}
	app := buildGateApp(companies, &countingObserver{})

	for _, path := range []string{"/api/subscription", "/api/me"} {
		resp := gateRequest(t, app, path, "admin", testCompanyID)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestSubscriptionGate_SuperAdminNoConsultaEmpresa(t *testing.T) {
	companies := &stubCompanies{}
	app := buildGateApp(companies, &countingObserver{})

	resp := gateRequest(t, app, "/api/users", entity.RoleSuperAdmin, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, companies.calls)
}

func TestSubscriptionGate_FalloDeConsultaRetorna503(t *testing.T) {
	companies := &stubCompanies{err: errors.New("db caída")}
	app := buildGateApp(companies, &countingObserver{})

	resp := gateRequest(t, app, "/api/users", "admin", testCompanyID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestFail_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: slug", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrGrantNotFound, http.StatusNotFound, "ACCESS_NOT_FOUND"},
		{domain.ErrGrantInactive, http.StatusForbidden, "ACCESS_INACTIVE"},
		{fmt.Errorf("repo: %w", domain.ErrDuplicate), http.StatusConflict, "DUPLICATE"},
		{domain.ErrPlanInUse, http.StatusUnprocessableEntity, "PLAN_IN_USE"},
		{domain.ErrPaymentNotCompleted, http.StatusPaymentRequired, "PAYMENT_NOT_COMPLETED"},
		{domain.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
		{fmt.Errorf("%w: timeout", domain.ErrExternalAuth), http.StatusBadGateway, "EXTERNAL_AUTH_FAILED"},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", apphttp.FailHandler(tc.err, false))
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)

		var body dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		assert.Equal(t, tc.code, body.Code)
	}
}

func TestFail_DetalleInternoSoloEnDebug(t *testing.T) {
	providerErr := fmt.Errorf("%w: api key inválida", domain.ErrPaymentProvider)

	for _, debug := range []bool{false, true} {
		app := fiber.New()
		app.Get("/", apphttp.FailHandler(providerErr, debug))
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)

		var body dto.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "PAYMENT_PROVIDER_ERROR", body.Code)
		if debug {
			assert.Contains(t, body.Message, "api key inválida")
		} else {
			assert.Equal(t, "error interno", body.Message)
		}
	}
}
