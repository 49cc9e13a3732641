package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/domain"
)

const (
	// minDataPoints is the minimum history size for a meaningful analysis.
	minDataPoints = 3
	// recentDays/olderDays split the window for trend detection.
	recentDays = 7
	olderDays  = 14
	// trendThresholdPct separates STABLE from a real move.
	trendThresholdPct = 5.0
	// minTrendSamples is required in both partitions before a trend is trusted.
	minTrendSamples = 2
	// minBestDaySamples is required per day-of-week group.
	minBestDaySamples = 2
)

// HistoryReader is the slice of the store the analyzer needs.
type HistoryReader interface {
	GetHistory(ctx context.Context, productID string, lookbackDays int) ([]domain.PriceObservation, error)
}

// Analyzer derives a buy/wait recommendation from persisted history. It
// is read-only over the store.
type Analyzer struct {
	store  HistoryReader
	logger *zap.Logger
}

func NewAnalyzer(store HistoryReader, logger *zap.Logger) *Analyzer {
	return &Analyzer{store: store, logger: logger}
}

// Analyze fetches a product's history window and computes its trend
// report. Exactly one of the two results is non-nil on success: too few
// observations yield an InsufficientData result, never a guess.
func (a *Analyzer) Analyze(ctx context.Context, productID string, currentPrice float64, lookbackDays int) (*domain.Analysis, *domain.InsufficientData, error) {
	history, err := a.store.GetHistory(ctx, productID, lookbackDays)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch history for %s: %w", productID, err)
	}
	if currentPrice <= 0 && len(history) > 0 {
		// No live price supplied: analyze against the latest observation.
		currentPrice = history[len(history)-1].Price
	}
	analysis, insufficient := Compute(productID, currentPrice, history, lookbackDays, time.Now())
	return analysis, insufficient, nil
}

// Compute derives the full analysis from an already-fetched history
// window, ordered oldest first. Pure; now is injected for determinism.
func Compute(productID string, currentPrice float64, history []domain.PriceObservation, lookbackDays int, now time.Time) (*domain.Analysis, *domain.InsufficientData) {
	if len(history) < minDataPoints {
		return nil, &domain.InsufficientData{
			ProductID:  productID,
			DataPoints: len(history),
			Message:    fmt.Sprintf("need at least %d observations, have %d", minDataPoints, len(history)),
		}
	}

	min, max, avg := priceStats(history)

	// Flat history carries no discount signal: position is pinned to the
	// middle.
	position := 0.5
	if max > min {
		position = (currentPrice - min) / (max - min)
		position = math.Max(0, math.Min(1, position))
	}

	trend, trendChange := detectTrend(history, now)

	verdict, rationale, confidence := decide(position, trend, lookbackDays)

	return &domain.Analysis{
		ProductID:     productID,
		CurrentPrice:  currentPrice,
		MinPrice:      min,
		MaxPrice:      max,
		AvgPrice:      math.Round(avg*100) / 100,
		PricePosition: int(math.Round(position * 100)),
		Trend:         trend,
		TrendChange:   math.Round(trendChange*10) / 10,
		Verdict:       verdict,
		Rationale:     rationale,
		Confidence:    confidence,
		BestDay:       bestDay(history),
		DataPoints:    len(history),
	}, nil
}

func priceStats(history []domain.PriceObservation) (min, max, avg float64) {
	min = history[0].Price
	max = history[0].Price
	sum := 0.0
	for _, obs := range history {
		if obs.Price < min {
			min = obs.Price
		}
		if obs.Price > max {
			max = obs.Price
		}
		sum += obs.Price
	}
	return min, max, sum / float64(len(history))
}

// detectTrend compares the average of the last 7 days against the 7 days
// before that. Without enough samples on both sides the trend is STABLE
// with zero change: insufficient signal, not "no change".
func detectTrend(history []domain.PriceObservation, now time.Time) (domain.Trend, float64) {
	recentCutoff := now.AddDate(0, 0, -recentDays)
	olderCutoff := now.AddDate(0, 0, -olderDays)

	var recentSum, olderSum float64
	var recentN, olderN int
	for _, obs := range history {
		switch {
		case obs.RecordedAt.After(recentCutoff):
			recentSum += obs.Price
			recentN++
		case obs.RecordedAt.After(olderCutoff):
			olderSum += obs.Price
			olderN++
		}
	}

	if recentN < minTrendSamples || olderN < minTrendSamples {
		return domain.TrendStable, 0
	}

	olderAvg := olderSum / float64(olderN)
	change := (recentSum/float64(recentN) - olderAvg) / olderAvg * 100
	switch {
	case change < -trendThresholdPct:
		return domain.TrendDecreasing, change
	case change > trendThresholdPct:
		return domain.TrendIncreasing, change
	default:
		return domain.TrendStable, change
	}
}

// decide walks the recommendation table in order; the first matching row
// wins.
func decide(position float64, trend domain.Trend, lookbackDays int) (domain.Verdict, string, float64) {
	switch {
	case position < 0.2:
		return domain.VerdictBuy, fmt.Sprintf("near %d-day low", lookbackDays), 0.85
	case position > 0.7 && trend == domain.TrendIncreasing:
		return domain.VerdictWait, "high and rising", 0.75
	case trend == domain.TrendDecreasing:
		return domain.VerdictWait, "falling, may drop further", 0.70
	case position < 0.4:
		return domain.VerdictBuy, "below average", 0.70
	default:
		return domain.VerdictNeutral, "average level", 0.60
	}
}

// bestDay returns the day-of-week (0=Sunday) with the lowest average
// price among days observed at least twice, or nil when no day
// qualifies. Ties go to the earliest day.
func bestDay(history []domain.PriceObservation) *int {
	var sums [7]float64
	var counts [7]int
	for _, obs := range history {
		if obs.DayOfWeek < 0 || obs.DayOfWeek > 6 {
			continue
		}
		sums[obs.DayOfWeek] += obs.Price
		counts[obs.DayOfWeek]++
	}

	best := -1
	bestAvg := 0.0
	for dow := 0; dow < 7; dow++ {
		if counts[dow] < minBestDaySamples {
			continue
		}
		avg := sums[dow] / float64(counts[dow])
		if best == -1 || avg < bestAvg {
			best = dow
			bestAvg = avg
		}
	}
	if best == -1 {
		return nil
	}
	return &best
}
