package holiday

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	yearCacheKeyPrefix = "holidays:year:"
	yearCacheTTL       = 24 * time.Hour
	dateLayout         = "2006-01-02"
)

func yearCacheKey(year int) string {
	return yearCacheKeyPrefix + strconv.Itoa(year)
}

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	// IsPublicHoliday reports whether the date is a weekend or a listed
	// statutory holiday.
	IsPublicHoliday(ctx context.Context, date time.Time) (bool, error)
	// DatesInYear returns the statutory holiday dates of one year, keyed
	// by YYYY-MM-DD. Batch variant so callers avoid per-date lookups.
	DatesInYear(ctx context.Context, year int) (map[string]struct{}, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) IsPublicHoliday(ctx context.Context, date time.Time) (bool, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return true, nil
	}

	dates, err := s.DatesInYear(ctx, date.Year())
	if err != nil {
		return false, err
	}

	_, ok := dates[date.Format(dateLayout)]
	return ok, nil
}

func (s *service) DatesInYear(ctx context.Context, year int) (map[string]struct{}, error) {
	cacheKey := yearCacheKey(year)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var list []string
			if json.Unmarshal([]byte(cached), &list) == nil {
				return toSet(list), nil
			}
		}
	}

	// Singleflight collapses concurrent loads of the same year (the batch
	// sweep touches every contract at once).
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		dates, err := s.repo.FindDatesInYear(ctx, year)
		if err != nil {
			return nil, err
		}

		list := make([]string, len(dates))
		for i, d := range dates {
			list[i] = d.Format(dateLayout)
		}

		if s.rdb != nil {
			if raw, err := json.Marshal(list); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, raw, yearCacheTTL).Err(); err != nil {
					s.logger.Warn("cache holiday year failed", zap.Int("year", year), zap.Error(err))
				}
			}
		}

		return list, nil
	})
	if err != nil {
		return nil, err
	}

	return toSet(v.([]string)), nil
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, d := range list {
		set[d] = struct{}{}
	}
	return set
}
