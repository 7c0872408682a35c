package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type sellerRequest struct {
	SellerName string `json:"seller_name"`
}

type sellerImportRequest struct {
	SellerNames []string `json:"seller_names"`
}

// handleSellers serves the blocklist admin surface: list, add, remove.
func (s *Server) handleSellers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sellers, err := s.blocklist.All(r.Context())
		if err != nil {
			http.Error(w, "failed to read blocklist", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"count":   len(sellers),
			"sellers": sellers,
		})

	case http.MethodPost:
		var req sellerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SellerName == "" {
			http.Error(w, "seller_name is required", http.StatusBadRequest)
			return
		}
		added, err := s.blocklist.Add(r.Context(), req.SellerName)
		if err != nil {
			http.Error(w, "failed to block seller", http.StatusInternalServerError)
			return
		}
		s.logger.Info("Seller blocked via admin API",
			zap.String("seller", req.SellerName),
			zap.Bool("added", added))
		writeJSON(w, http.StatusOK, map[string]bool{"added": added})

	case http.MethodDelete:
		var req sellerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SellerName == "" {
			http.Error(w, "seller_name is required", http.StatusBadRequest)
			return
		}
		removed, err := s.blocklist.Remove(r.Context(), req.SellerName)
		if err != nil {
			http.Error(w, "failed to unblock seller", http.StatusInternalServerError)
			return
		}
		s.logger.Info("Seller unblocked via admin API",
			zap.String("seller", req.SellerName),
			zap.Bool("removed", removed))
		writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSellersImport bulk-loads sellers into the blocklist.
func (s *Server) handleSellersImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req sellerImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.SellerNames) == 0 {
		http.Error(w, "seller_names is required", http.StatusBadRequest)
		return
	}
	added, skipped, err := s.blocklist.Import(r.Context(), req.SellerNames)
	if err != nil {
		http.Error(w, "import failed", http.StatusInternalServerError)
		return
	}
	s.logger.Info("Blocklist import complete",
		zap.Int("added", added),
		zap.Int("skipped", skipped))
	writeJSON(w, http.StatusOK, map[string]int{"added": added, "skipped": skipped})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.cache.Stats(r.Context()))
}

// handleCache invalidates a single key, or sweeps expired entries when
// no key is given.
func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		if err := s.cache.Invalidate(r.Context(), key); err != nil {
			http.Error(w, "invalidate failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"invalidated": key})
		return
	}
	if err := s.cache.Cleanup(r.Context()); err != nil {
		http.Error(w, "cleanup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleaned"})
}
