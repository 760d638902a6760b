package services

import (
	"context"
	"sync"

	"github.com/epeers/portfolio-tracker/internal/models"
	log "github.com/sirupsen/logrus"
)

type warningsKey struct{}

// WarningCollector gathers the non-fatal problems of one upload or job run so
// they can be returned next to the result instead of failing it.
type WarningCollector struct {
	mu    sync.Mutex
	items []models.Warning
}

// NewWarningContext attaches an empty collector to ctx. The caller keeps the
// collector and copies its warnings into the response once the service returns.
func NewWarningContext(ctx context.Context) (context.Context, *WarningCollector) {
	wc := &WarningCollector{}
	return context.WithValue(ctx, warningsKey{}, wc), wc
}

// AddWarning records w on the collector in ctx and logs it. Without a
// collector the warning is only logged.
func AddWarning(ctx context.Context, w models.Warning) {
	log.WithField("code", w.Code).Warn(w.Message)

	wc, _ := ctx.Value(warningsKey{}).(*WarningCollector)
	if wc == nil {
		return
	}
	wc.mu.Lock()
	wc.items = append(wc.items, w)
	wc.mu.Unlock()
}

// GetWarnings returns a copy of the collected warnings, nil when there are none.
func (wc *WarningCollector) GetWarnings() []models.Warning {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	if len(wc.items) == 0 {
		return nil
	}
	return append([]models.Warning(nil), wc.items...)
}
