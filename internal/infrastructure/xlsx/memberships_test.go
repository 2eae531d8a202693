package xlsx_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
	"github.com/jhoicas/crm-portal-api/internal/infrastructure/xlsx"
)

func TestMembershipsWorkbook(t *testing.T) {
	ext := "77"
	exp := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	out, err := xlsx.MembershipsWorkbook("Doctor Platform", []dto.MembershipResponse{
		{UserName: "Ana Ruiz", UserEmail: "ana@x.co", ExternalUserID: &ext, ExternalUsername: "ana@x.co", Status: "active", TokenExpiresAt: &exp, CreatedAt: exp},
		{UserName: "Luis", UserEmail: "luis@x.co", Status: "active", CreatedAt: exp},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Membresías")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, xlsx.MembershipHeader, rows[0])
	assert.Equal(t, "Ana Ruiz", rows[1][0])
	assert.Equal(t, "77", rows[1][2])
	assert.Equal(t, "2026-05-01 10:30", rows[1][6])
	assert.Equal(t, "luis@x.co", rows[2][1])
}

func TestMembershipsWorkbook_Empty(t *testing.T) {
	out, err := xlsx.MembershipsWorkbook("", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Membresías")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMembershipsWorkbook_HojaActiva(t *testing.T) {
	out, err := xlsx.MembershipsWorkbook("Doctor Platform", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Membresías"}, f.GetSheetList())
	assert.Equal(t, "Membresías", f.GetSheetName(f.GetActiveSheetIndex()))
}
