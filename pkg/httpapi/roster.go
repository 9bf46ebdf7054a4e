package httpapi

import (
	"context"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// trackRoster keeps the members gauge in step with the roster until the
// returned cancel is called
func (s *Server) trackRoster(ctx context.Context) (cancel func()) {
	projection := live.NewProjection[model.Member](s.bus, db.CollectionMembers, s.db.ListMembers, setRosterGauge)
	projection.OnError = func(err error) {
		s.logger.Warn("Failed to refresh roster gauge", zap.Error(err))
	}
	return projection.Start(ctx)
}

func setRosterGauge(members []model.Member) {
	counts := map[model.MemberStatus]int{
		model.StatusActive:   0,
		model.StatusPending:  0,
		model.StatusDisabled: 0,
	}
	for _, m := range members {
		counts[m.Status]++
	}
	for status, n := range counts {
		metrics.Members.WithLabelValues(string(status)).Set(float64(n))
	}
}
