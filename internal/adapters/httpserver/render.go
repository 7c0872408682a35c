package httpserver

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// decisionResponse is the JSON shape returned to callers. Both this
// and the HTML document are derived from the same Decision, so a cache
// hit can serve either without re-analysis.
type decisionResponse struct {
	Qualify        bool     `json:"qualify"`
	Recommendation string   `json:"recommendation"`
	Confidence     int      `json:"confidence"`
	Category       string   `json:"category,omitempty"`
	MarketPrice    float64  `json:"market_price"`
	MaxBuy         float64  `json:"max_buy"`
	Profit         float64  `json:"profit"`
	Reasoning      []string `json:"reasoning"`
	Provenance     string   `json:"provenance"`
	SellerScore    int      `json:"seller_score"`
	SellerTier     string   `json:"seller_tier,omitempty"`
	AnalyzedAt     string   `json:"analyzed_at"`
	ProcessingID   string   `json:"processing_id"`
}

func toResponse(d *core.Decision) decisionResponse {
	reasoning := d.Reasoning
	if reasoning == nil {
		reasoning = []string{}
	}
	return decisionResponse{
		Qualify:        d.Qualify,
		Recommendation: string(d.Recommendation),
		Confidence:     d.Confidence,
		Category:       d.Category,
		MarketPrice:    d.MarketPrice,
		MaxBuy:         d.MaxBuy,
		Profit:         d.Profit,
		Reasoning:      reasoning,
		Provenance:     string(d.Provenance),
		SellerScore:    d.SellerScore,
		SellerTier:     d.SellerTier,
		AnalyzedAt:     d.AnalyzedAt.Format(time.RFC3339),
		ProcessingID:   d.ProcessingID,
	}
}

var recommendationColors = map[core.Recommendation]string{
	core.RecommendationBuy:      "#1a7f37",
	core.RecommendationResearch: "#9a6700",
	core.RecommendationPass:     "#cf222e",
}

// HTMLRenderer builds the HTML verdict document stored alongside each
// cached decision.
type HTMLRenderer struct{}

// NewHTMLRenderer creates a new HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// RenderHTML renders a decision as a standalone HTML document.
func (r *HTMLRenderer) RenderHTML(d *core.Decision, ev *core.ListingEvent) string {
	color, ok := recommendationColors[d.Recommendation]
	if !ok {
		color = "#57606a"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\">")
	sb.WriteString("<title>" + html.EscapeString(ev.Title) + "</title></head><body>")
	fmt.Fprintf(&sb, "<h1 style=\"color:%s\">%s</h1>", color, d.Recommendation)
	fmt.Fprintf(&sb, "<h2>%s</h2>", html.EscapeString(ev.Title))
	sb.WriteString("<table>")
	fmt.Fprintf(&sb, "<tr><td>Asking</td><td>$%.2f</td></tr>", ev.TotalPrice)
	if d.MarketPrice > 0 {
		fmt.Fprintf(&sb, "<tr><td>Market</td><td>$%.2f</td></tr>", d.MarketPrice)
	}
	if d.MaxBuy > 0 {
		fmt.Fprintf(&sb, "<tr><td>Max buy</td><td>$%.2f</td></tr>", d.MaxBuy)
	}
	if d.Profit != 0 {
		fmt.Fprintf(&sb, "<tr><td>Profit</td><td>$%.2f</td></tr>", d.Profit)
	}
	fmt.Fprintf(&sb, "<tr><td>Confidence</td><td>%d%%</td></tr>", d.Confidence)
	if d.SellerTier != "" {
		fmt.Fprintf(&sb, "<tr><td>Seller</td><td>%s (%d)</td></tr>",
			html.EscapeString(ev.SellerName), d.SellerScore)
	}
	fmt.Fprintf(&sb, "<tr><td>Source</td><td>%s</td></tr>", d.Provenance)
	sb.WriteString("</table>")
	if len(d.Reasoning) > 0 {
		sb.WriteString("<ul>")
		for _, reason := range d.Reasoning {
			sb.WriteString("<li>" + html.EscapeString(reason) + "</li>")
		}
		sb.WriteString("</ul>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}
