package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pricescout/internal/domain"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	storeKey := r.URL.Query().Get("store")
	if storeKey == "" {
		s.respondWithError(w, http.StatusBadRequest, "store query parameter is required")
		return
	}
	if !s.registry.Has(storeKey) {
		s.respondWithError(w, http.StatusBadRequest, "unknown store: "+storeKey)
		return
	}

	result := s.collector.Collect(r.Context(), []string{storeKey}, query)
	s.persist(r.Context(), result.Products)

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":    query,
		"store":    storeKey,
		"count":    len(result.Products),
		"products": productsOrEmpty(result.Products),
	})
}

func (s *Server) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	result := s.collector.CollectAll(r.Context(), query)
	s.persist(r.Context(), result.Products)

	payload := map[string]interface{}{
		"query":    query,
		"count":    len(result.Products),
		"products": productsOrEmpty(result.Products),
	}
	if len(result.Errors) > 0 {
		payload["failed_sources"] = result.Errors
	}
	s.respondWithJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if s.pgStore == nil {
		s.metrics.IncAnalyses("insufficient_data")
		s.respondWithJSON(w, http.StatusOK, domain.InsufficientData{
			ProductID: productID,
			Message:   "price history storage is not configured",
		})
		return
	}

	currentPrice := 0.0
	if raw := r.URL.Query().Get("price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			s.respondWithError(w, http.StatusBadRequest, "price must be a positive number")
			return
		}
		currentPrice = v
	}

	lookbackDays := s.config.LookbackDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			lookbackDays = v
		}
	}

	analysis, insufficient, err := s.analyzer.Analyze(r.Context(), productID, currentPrice, lookbackDays)
	if err != nil {
		s.logger.Error("analysis failed", zap.String("product_id", productID), zap.Error(err))
		s.metrics.IncAnalyses("failed")
		s.respondWithError(w, http.StatusInternalServerError, "could not analyze price history")
		return
	}
	if insufficient != nil {
		s.metrics.IncAnalyses("insufficient_data")
		s.respondWithJSON(w, http.StatusOK, insufficient)
		return
	}
	s.metrics.IncAnalyses("ok")
	s.respondWithJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if s.pgStore == nil {
		s.respondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	entry, err := s.pgStore.GetCatalogEntry(r.Context(), productID)
	if err != nil {
		if err.Error() == "not_found" {
			s.respondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		s.logger.Error("failed to read catalog entry", zap.String("product_id", productID), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "could not read product")
		return
	}

	s.respondWithJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	days := s.config.LookbackDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			days = v
		}
	}

	history := []domain.PriceObservation{}
	if s.pgStore != nil {
		rows, err := s.pgStore.GetHistory(r.Context(), productID, days)
		if err != nil {
			s.logger.Error("failed to read history", zap.String("product_id", productID), zap.Error(err))
			s.respondWithError(w, http.StatusInternalServerError, "could not read price history")
			return
		}
		history = append(history, rows...)
	}

	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"days":       days,
		"count":      len(history),
		"history":    history,
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if s.pgStore == nil {
		healthStatus["postgres"] = "not_configured"
	} else if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if s.redisStore == nil {
		healthStatus["redis"] = "not_configured"
	} else if err := s.redisStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] == "unhealthy" || healthStatus["redis"] == "unhealthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// persist hands the merged batch to the observation writer. Without a
// configured store the batch is skipped; search still answers.
func (s *Server) persist(ctx context.Context, products []domain.Product) {
	if len(products) == 0 {
		return
	}
	if s.pgStore == nil {
		s.metrics.IncWriteBatches("skipped")
		return
	}
	if err := s.pgStore.WriteObservations(ctx, products); err != nil {
		s.logger.Error("failed to write observations", zap.Int("batch", len(products)), zap.Error(err))
		s.metrics.IncWriteBatches("failed")
		return
	}
	s.metrics.IncWriteBatches("ok")
}

func productsOrEmpty(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
