// Package xlsx exporta listados a hojas de cálculo.
package xlsx

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/crm-portal-api/internal/application/dto"
)

const membershipsSheet = "Membresías"

// MembershipHeader columnas del export de membresías.
var MembershipHeader = []string{
	"Usuario",
	"Email",
	"ID externo",
	"Usuario externo",
	"Rol externo",
	"Estado",
	"Token vence",
	"Creado",
}

var membershipWidths = []float64{28, 32, 16, 24, 14, 12, 20, 20}

// MembershipsWorkbook genera el XLSX de membresías de un proyecto.
func MembershipsWorkbook(projectName string, rows []dto.MembershipResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if _, err := f.NewSheet(membershipsSheet); err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("xlsx: eliminar hoja por defecto: %w", err)
	}
	// DeleteSheet corre los índices: se consulta después de borrar.
	index, err := f.GetSheetIndex(membershipsSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: índice de hoja: %w", err)
	}
	f.SetActiveSheet(index)
	if projectName != "" {
		_ = f.SetDocProps(&excelize.DocProperties{Title: "Membresías " + projectName})
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo de cabecera: %w", err)
	}

	header := make([]any, len(MembershipHeader))
	for i, h := range MembershipHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(membershipsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(MembershipHeader), 1)
	if err := f.SetCellStyle(membershipsSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx: estilo de cabecera: %w", err)
	}
	for i, w := range membershipWidths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(membershipsSheet, colName, colName, w); err != nil {
			return nil, fmt.Errorf("xlsx: ancho de columna: %w", err)
		}
	}

	for i, m := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			m.UserName,
			m.UserEmail,
			deref(m.ExternalUserID),
			m.ExternalUsername,
			m.ExternalRole,
			m.Status,
			formatTime(m.TokenExpiresAt),
			m.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(membershipsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}
