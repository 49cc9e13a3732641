package domain

import "time"

// Product is the canonical observation every source adapter emits: one
// retailer's current listing for one item at one scrape instant. It is
// consumed by the observation writer and never stored as-is.
type Product struct {
	ProductID     string   `json:"product_id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	ProductURL    string   `json:"product_url,omitempty"`
	Store         string   `json:"store"`
}

// UnknownName is the sentinel for titles that could not be parsed.
const UnknownName = "Unknown"

// PriceObservation is one persisted time-series row. DayOfWeek and
// DayOfMonth are derived from RecordedAt at write time and never
// recomputed.
type PriceObservation struct {
	ID            int64     `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Store         string    `json:"store"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
	DayOfWeek     int       `json:"day_of_week"`
	DayOfMonth    int       `json:"day_of_month"`
}

// CatalogEntry is the one-row-per-product catalog record. Mutable fields
// are last-write-wins on every observation.
type CatalogEntry struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastUpdated time.Time `json:"last_updated"`
}

// Verdict is the categorical buy/wait recommendation.
type Verdict string

const (
	VerdictBuy     Verdict = "BUY"
	VerdictWait    Verdict = "WAIT"
	VerdictNeutral Verdict = "NEUTRAL"
)

// Trend classifies the recent price direction over the lookback window.
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendDecreasing Trend = "DECREASING"
	TrendStable     Trend = "STABLE"
)

// Analysis is the derived trend report for one product. Computed fresh
// per request, never persisted.
type Analysis struct {
	ProductID     string  `json:"product_id"`
	CurrentPrice  float64 `json:"current_price"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	AvgPrice      float64 `json:"avg_price"`
	PricePosition int     `json:"price_position"`
	Trend         Trend   `json:"trend"`
	TrendChange   float64 `json:"trend_change_pct"`
	Verdict       Verdict `json:"verdict"`
	Rationale     string  `json:"rationale"`
	Confidence    float64 `json:"confidence"`
	BestDay       *int    `json:"best_day,omitempty"`
	DataPoints    int     `json:"data_points"`
}

// InsufficientData is returned instead of an Analysis when the window
// holds fewer than the minimum number of observations. It carries the
// observed count so callers can report it.
type InsufficientData struct {
	ProductID  string `json:"product_id"`
	DataPoints int    `json:"data_points"`
	Message    string `json:"message"`
}
