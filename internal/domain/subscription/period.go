package subscription

import (
	"fmt"
	"time"

	"github.com/jhoicas/crm-portal-api/internal/domain"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

// PeriodEnd calcula el fin del periodo a partir del intervalo del plan.
func PeriodEnd(start time.Time, interval string) (time.Time, error) {
	switch interval {
	case entity.IntervalMonth:
		return start.AddDate(0, 1, 0), nil
	case entity.IntervalYear:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("intervalo %q: %w", interval, domain.ErrInvalidInput)
	}
}

// RenewalStart devuelve el inicio de un nuevo periodo: si el actual aún no venció
// se encadena a su fin, si no arranca en now.
func RenewalStart(now time.Time, current *entity.Subscription) time.Time {
	if current != nil && current.CurrentPeriodEnd.After(now) {
		return current.CurrentPeriodEnd
	}
	return now
}
