package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// listingRequest is the inbound wire shape for one marketplace alert.
type listingRequest struct {
	Title         string            `json:"title"`
	TotalPrice    float64           `json:"total_price"`
	ItemPrice     float64           `json:"item_price"`
	SellerName    string            `json:"seller_name"`
	FeedbackScore int               `json:"feedback_score"`
	CategoryHint  string            `json:"category_hint"`
	Condition     string            `json:"condition"`
	BestOffer     bool              `json:"best_offer"`
	UPC           string            `json:"upc"`
	Description   string            `json:"description"`
	PostedAt      string            `json:"posted_at"`
	MediaURLs     []string          `json:"media_urls"`
	Attributes    map[string]string `json:"attributes"`
}

func (r *listingRequest) toEvent() *core.ListingEvent {
	postedAt, err := time.Parse(time.RFC3339, r.PostedAt)
	if err != nil {
		postedAt = time.Now()
	}
	return &core.ListingEvent{
		Title:         r.Title,
		TotalPrice:    r.TotalPrice,
		ItemPrice:     r.ItemPrice,
		SellerName:    r.SellerName,
		FeedbackScore: r.FeedbackScore,
		CategoryHint:  r.CategoryHint,
		Condition:     r.Condition,
		BestOffer:     r.BestOffer,
		UPC:           r.UPC,
		Description:   r.Description,
		PostedAt:      postedAt,
		MediaURLs:     r.MediaURLs,
		Attributes:    r.Attributes,
	}
}

// Server is the HTTP implementation of the ListingServer port.
type Server struct {
	service   *core.EvaluatorService
	blocklist core.BlocklistStore
	cache     core.DecisionCache
	renderer  *HTMLRenderer
	logger    *zap.Logger
	httpSrv   *http.Server
}

// NewServer creates a new listing HTTP server
func NewServer(
	service *core.EvaluatorService,
	blocklist core.BlocklistStore,
	cache core.DecisionCache,
	renderer *HTMLRenderer,
	listenAddress string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		service:   service,
		blocklist: blocklist,
		cache:     cache,
		renderer:  renderer,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/admin/sellers", s.handleSellers)
	mux.HandleFunc("/admin/sellers/import", s.handleSellersImport)
	mux.HandleFunc("/admin/cache/stats", s.handleCacheStats)
	mux.HandleFunc("/admin/cache", s.handleCache)

	s.httpSrv = &http.Server{
		Addr:         listenAddress,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start() error {
	s.logger.Info("Starting listing server", zap.String("address", s.httpSrv.Addr))
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping listing server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("Rejected unparseable listing payload", zap.Error(err))
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	ev := req.toEvent()
	start := time.Now()
	decision, display := s.service.Evaluate(r.Context(), ev)
	s.logger.Info("Evaluated listing",
		zap.String("title", ev.Title),
		zap.String("recommendation", string(decision.Recommendation)),
		zap.String("provenance", string(decision.Provenance)),
		zap.Duration("elapsed", time.Since(start)))

	if r.URL.Query().Get("format") == "html" {
		// Cache hits carry the payload rendered at store time; the
		// short-circuit paths render on demand.
		if display == "" {
			display = s.renderer.RenderHTML(decision, ev)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(display))
		return
	}
	writeJSON(w, http.StatusOK, toResponse(decision))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
