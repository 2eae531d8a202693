package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/pdf"
)

func TestReceipt_GeneratesPDF(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	gen := pdf.NewMarotoReceiptGenerator("CRM Portal")

	out, err := gen.Receipt(subscription.ReceiptData{
		Company: &entity.Company{ID: "c1", Name: "Clínica Norte", TaxID: "900123456-7", Email: "admin@norte.co"},
		Plan:    &entity.SubscriptionPlan{ID: "p1", Name: "Pro", Amount: decimal.RequireFromString("49.90"), Currency: "usd"},
		Subscription: &entity.Subscription{
			ID:                 "8f3a2c1e-0000-0000-0000-000000000000",
			Status:             entity.SubStatusActive,
			PaymentRef:         "pi_123",
			CurrentPeriodStart: start,
			CurrentPeriodEnd:   start.AddDate(0, 1, 0),
		},
		IssuedAt: start,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReceipt_IncompleteData(t *testing.T) {
	_, err := pdf.NewMarotoReceiptGenerator("").Receipt(subscription.ReceiptData{})
	require.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "49,90", pdf.FormatAmount("49.90"))
	assert.Equal(t, "1.234.567,50", pdf.FormatAmount("1234567.50"))
	assert.Equal(t, "-1.000", pdf.FormatAmount("-1000"))
}
