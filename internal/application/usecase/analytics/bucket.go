// Package analytics contains the period comparison use cases and the
// aggregation engine behind them: bucketing, reduction and alignment.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/menuinzicht/backend/internal/domain/calendar"
	"github.com/menuinzicht/backend/internal/domain/entity"
	domainerror "github.com/menuinzicht/backend/internal/domain/error"
	"github.com/menuinzicht/backend/internal/domain/valueobject"
)

// Mode represents the bucketing granularity.
type Mode string

const (
	ModeDay      Mode = "day"
	ModeWeek     Mode = "week"
	ModeMonth    Mode = "month"
	ModeYear     Mode = "year"
	ModeWeekday  Mode = "weekday"
	ModeInterval Mode = "interval"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDay, ModeWeek, ModeMonth, ModeYear, ModeWeekday, ModeInterval:
		return m, nil
	default:
		return "", domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMode,
			fmt.Sprintf("unknown mode %q", s),
			domainerror.ErrInvalidMode,
		)
	}
}

// BucketKey identifies a granularity-dependent group, e.g. "2025-W09" or "Monday".
type BucketKey string

// Span is the inclusive date range covered by one side of a bucket.
type Span struct {
	Start time.Time
	End   time.Time
}

// Label renders the span for tooltips: "2 Sep 2025" or "2 Sep 2025 - 8 Sep 2025".
func (s Span) Label() string {
	if s.Start.Equal(s.End) {
		return s.Start.Format("2 Jan 2006")
	}
	return s.Start.Format("2 Jan 2006") + " - " + s.End.Format("2 Jan 2006")
}

// Bucket is a key plus the dates and records that fall into it.
type Bucket struct {
	Key     BucketKey
	Dates   []time.Time
	Records []entity.DailyMetric
	ordinal int
}

// Span returns the first and last date in the bucket. ok is false for an empty bucket.
func (b *Bucket) Span() (span Span, ok bool) {
	if len(b.Dates) == 0 {
		return Span{}, false
	}
	return Span{Start: b.Dates[0], End: b.Dates[len(b.Dates)-1]}, true
}

// SpanLabel returns the tooltip label of the bucket, empty when the bucket has no dates.
func (b *Bucket) SpanLabel() string {
	span, ok := b.Span()
	if !ok {
		return ""
	}
	return span.Label()
}

// SortKey is a chronological sort key that is comparable across bucket sets of the same mode.
func (b *Bucket) SortKey() int {
	return b.ordinal
}

// BucketSet is the result of grouping: buckets in chronological order.
type BucketSet struct {
	Mode    Mode
	order   []BucketKey
	buckets map[BucketKey]*Bucket
}

func newBucketSet(mode Mode) *BucketSet {
	return &BucketSet{Mode: mode, buckets: make(map[BucketKey]*Bucket)}
}

// Len returns the number of buckets.
func (s *BucketSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Keys returns bucket keys in chronological order.
func (s *BucketSet) Keys() []BucketKey {
	if s == nil {
		return nil
	}
	keys := make([]BucketKey, len(s.order))
	copy(keys, s.order)
	return keys
}

// Get returns the bucket for key.
func (s *BucketSet) Get(key BucketKey) (*Bucket, bool) {
	if s == nil {
		return nil, false
	}
	b, ok := s.buckets[key]
	return b, ok
}

// Buckets returns the buckets in chronological order.
func (s *BucketSet) Buckets() []*Bucket {
	if s == nil {
		return nil
	}
	out := make([]*Bucket, len(s.order))
	for i, key := range s.order {
		out[i] = s.buckets[key]
	}
	return out
}

// Records returns the per-key record lists, the mapping form of the grouping.
func (s *BucketSet) Records() map[BucketKey][]entity.DailyMetric {
	out := make(map[BucketKey][]entity.DailyMetric, s.Len())
	for _, b := range s.Buckets() {
		out[b.Key] = b.Records
	}
	return out
}

func (s *BucketSet) bucketFor(key BucketKey, ordinal int) *Bucket {
	b, ok := s.buckets[key]
	if !ok {
		b = &Bucket{Key: key, ordinal: ordinal}
		s.buckets[key] = b
	}
	return b
}

func (s *BucketSet) finalize() {
	s.order = s.order[:0]
	for key, b := range s.buckets {
		s.order = append(s.order, key)
		sort.Slice(b.Dates, func(i, j int) bool { return b.Dates[i].Before(b.Dates[j]) })
		sort.SliceStable(b.Records, func(i, j int) bool { return b.Records[i].Date.Before(b.Records[j].Date) })
	}
	sort.Slice(s.order, func(i, j int) bool {
		return s.buckets[s.order[i]].ordinal < s.buckets[s.order[j]].ordinal
	})
}

// KeyFor returns the bucket key and chronological ordinal of date under mode.
func KeyFor(date time.Time, mode Mode) (BucketKey, int, error) {
	switch mode {
	case ModeDay:
		return BucketKey(calendar.FormatDate(date)), calendar.DayNumber(date), nil
	case ModeWeek:
		weekYear, week := calendar.ISOWeekOf(date)
		return BucketKey(fmt.Sprintf("%d-W%02d", weekYear, week)), weekYear*100 + week, nil
	case ModeMonth:
		return BucketKey(fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month()))), date.Year()*100 + int(date.Month()), nil
	case ModeYear:
		return BucketKey(fmt.Sprintf("%04d", date.Year())), date.Year(), nil
	case ModeWeekday:
		idx := calendar.WeekdayIndex(date)
		return BucketKey(calendar.WeekdayName(idx)), idx, nil
	default:
		return "", 0, domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMode,
			fmt.Sprintf("mode %q cannot bucket daily records", mode),
			domainerror.ErrInvalidMode,
		)
	}
}

// GroupBy groups daily records by mode. Only dates that carry a record
// produce buckets, except in weekday mode which always yields all seven.
func GroupBy(records []entity.DailyMetric, mode Mode) (*BucketSet, error) {
	set := newBucketSet(mode)
	if err := seedWeekdays(set); err != nil {
		return nil, err
	}

	for _, record := range records {
		key, ordinal, err := KeyFor(record.Date, mode)
		if err != nil {
			return nil, err
		}
		b := set.bucketFor(key, ordinal)
		b.Dates = append(b.Dates, calendar.Normalize(record.Date))
		b.Records = append(b.Records, record)
	}

	set.finalize()
	return set, nil
}

// GroupRange groups every date of r by mode and attaches the records that fall
// on those dates. Dates without a record still shape bucket spans, so buckets
// reflect exactly the selected calendar range.
func GroupRange(r valueobject.DateRange, records []entity.DailyMetric, mode Mode) (*BucketSet, error) {
	set := newBucketSet(mode)
	if err := seedWeekdays(set); err != nil {
		return nil, err
	}

	byDate := make(map[string][]entity.DailyMetric, len(records))
	for _, record := range records {
		if !r.Contains(record.Date) {
			continue
		}
		byDate[record.ISODate()] = append(byDate[record.ISODate()], record)
	}

	for _, date := range r.Expand() {
		key, ordinal, err := KeyFor(date, mode)
		if err != nil {
			return nil, err
		}
		b := set.bucketFor(key, ordinal)
		b.Dates = append(b.Dates, date)
		b.Records = append(b.Records, byDate[calendar.FormatDate(date)]...)
	}

	set.finalize()
	return set, nil
}

func seedWeekdays(set *BucketSet) error {
	switch set.Mode {
	case ModeWeekday:
		for idx, name := range calendar.Weekdays {
			set.bucketFor(BucketKey(name), idx)
		}
	case ModeInterval:
		return domainerror.NewAnalyticsError(
			domainerror.ErrCodeInvalidMode,
			"interval mode groups intraday records, use GroupByInterval",
			domainerror.ErrInvalidMode,
		)
	}
	return nil
}
