package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/apperr"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

// CountedKind names a resource kind that counts against a plan limit.
type CountedKind string

const (
	CountedAnimals  CountedKind = "animals"
	CountedStaff    CountedKind = "staff"
	CountedProducts CountedKind = "products"
)

// MetricsAggregator keeps usage_metrics rows in step with the live
// cardinality of the counted tables. The stored row is a cache: every limit
// check recomputes from the live tables first, so drift can never admit a
// create past the limit.
type MetricsAggregator struct {
	base
}

// NewMetricsAggregator creates the aggregator.
func NewMetricsAggregator(db *gorm.DB, timeout time.Duration, f *feed.Feed) *MetricsAggregator {
	return &MetricsAggregator{base: newBase(db, timeout, f)}
}

// Initialize seeds the metric row at onboarding: one staff member, nothing
// else yet. Failure here does not abort onboarding; the caller logs it and
// moves on, which is safe because limit checks never trust this row.
func (s *MetricsAggregator) Initialize(ctx context.Context, orgID uint) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	metric := model.UsageMetric{
		OrgID:       orgID,
		TotalStaff:  1,
		LastUpdated: time.Now(),
	}
	if result := s.db.WithContext(ctx).Create(&metric); result.Error != nil {
		return dbError(result.Error, "usage metric")
	}
	return nil
}

// Recompute queries the live counts and refreshes the cached row.
func (s *MetricsAggregator) Recompute(ctx context.Context, orgID uint) (*model.UsageMetric, error) {
	defer prometheus.TrackDBOperation("recompute")(time.Now())

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	db := s.db.WithContext(ctx)

	var animals, staff, products int64
	if err := db.Model(&model.Animal{}).Where("org_id = ?", orgID).Count(&animals).Error; err != nil {
		return nil, dbError(err, "usage metric")
	}
	if err := db.Model(&model.User{}).Where("org_id = ?", orgID).Count(&staff).Error; err != nil {
		return nil, dbError(err, "usage metric")
	}
	if err := db.Model(&model.Product{}).Where("org_id = ?", orgID).Count(&products).Error; err != nil {
		return nil, dbError(err, "usage metric")
	}

	var metric model.UsageMetric
	result := db.Where("org_id = ?", orgID).First(&metric)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, dbError(result.Error, "usage metric")
	}

	metric.OrgID = orgID
	metric.TotalAnimals = animals
	metric.TotalStaff = staff
	metric.TotalProducts = products
	metric.LastUpdated = time.Now()

	if err := db.Save(&metric).Error; err != nil {
		return nil, dbError(err, "usage metric")
	}
	return &metric, nil
}

// RefreshAsync recomputes the cached row in the background after a counted
// mutation. Best-effort: a failed refresh only leaves the cache stale.
func (s *MetricsAggregator) RefreshAsync(orgID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.Recompute(ctx, orgID); err != nil {
			logger.GetLogger().Warn("usage metric refresh failed",
				zap.Uint("org_id", orgID),
				zap.Error(err))
		}
	}()
}

// CheckLimit recomputes the counts for one organization and denies the
// pending create when the relevant plan limit is reached.
func (s *MetricsAggregator) CheckLimit(ctx context.Context, orgID uint, kind CountedKind) error {
	var org model.Organization
	{
		ctx, cancel := s.opCtx(ctx)
		defer cancel()
		if result := s.db.WithContext(ctx).First(&org, orgID); result.Error != nil {
			return dbError(result.Error, "organization")
		}
	}

	metric, err := s.Recompute(ctx, orgID)
	if err != nil {
		return err
	}

	var count int64
	var limit int
	switch kind {
	case CountedAnimals:
		count, limit = metric.TotalAnimals, org.LimitAnimals
	case CountedStaff:
		count, limit = metric.TotalStaff, org.LimitStaff
	case CountedProducts:
		count, limit = metric.TotalProducts, org.LimitProducts
	default:
		return apperr.Validation("unknown counted resource %q", kind)
	}

	if count >= int64(limit) {
		prometheus.LimitDenialCounter.WithLabelValues(string(kind)).Inc()
		return apperr.LimitExceeded("plan limit reached for %s (%d/%d)", kind, count, limit)
	}
	return nil
}

// SubscribeFeed wires the aggregator to the change feed so dashboards see
// fresh counts without polling. Opportunistic only.
func (s *MetricsAggregator) SubscribeFeed() error {
	for _, table := range []string{"animals", "products", "users"} {
		if _, err := s.feed.OnChange(table, func(change feed.Change) {
			if change.Op == feed.OpInsert || change.Op == feed.OpDelete {
				s.RefreshAsync(change.OrgID)
			}
		}); err != nil {
			return err
		}
	}
	return nil
}
