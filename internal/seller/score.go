// Package seller scores seller profiles to bias decisions toward the
// casual sellers where arbitrage actually happens. Scoring is pure:
// event in, score plus reason trail out.
package seller

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// Tier labels derived from a score.
const (
	TierHigh   = "HIGH"
	TierMedium = "MEDIUM"
	TierNormal = "NORMAL"
	TierLow    = "LOW"
)

type namePattern struct {
	re     *regexp.Regexp
	score  int
	reason string
}

// Seller-name patterns. Positive scores mark casual or estate sellers,
// negative scores mark professionals who already know prices.
var namePatterns = []namePattern{
	{regexp.MustCompile(`thrift|goodwill|salvation|hospice|charity|resale`), 15, "thrift/charity seller"},
	{regexp.MustCompile(`estate|inherited|attic|downsizing`), 12, "estate seller"},
	{regexp.MustCompile(`liquidat|storage|moving|closeout|auction`), 10, "liquidator"},
	{regexp.MustCompile(`antique|vintage.*(shop|store|dealer)`), 8, "antique dealer"},
	{regexp.MustCompile(`jewel|diamond|gem|precious|luxury`), -15, "jewelry professional"},
	{regexp.MustCompile(`pawn|coin|gold.?buyer|cash.?for|we.?buy`), -10, "pawn/coin dealer"},
	{regexp.MustCompile(`dealer|wholesale|trade|broker`), -8, "professional dealer"},
}

type feedbackBucket struct {
	low, high int
	score     int
	reason    string
}

var feedbackBuckets = []feedbackBucket{
	{0, 50, 8, "low feedback (casual seller)"},
	{51, 200, 5, "low-medium feedback"},
	{201, 1000, 2, "medium feedback"},
	{1001, 5000, 0, "established seller"},
	{5001, 1 << 30, -8, "high-volume seller"},
}

var conditionScores = map[string]int{
	"like new":  15,
	"good":      10,
	"unknown":   8,
	"very good": 5,
	"new":       3,
	"used":      0,
	"for parts": -20,
}

var titleKeywordScores = map[string]int{
	"scrap":     10,
	"tested":    8,
	"grams":     8,
	"gram":      8,
	"dwt":       8,
	"lot":       6,
	"charm":     5,
	"firm":      -5,
	"no offers": -5,
	"not scrap": -10,
}

// Score rates a seller 0-100 from listing attributes; 50 is neutral.
// The reason trail feeds the decision's reasoning output.
func Score(ev *core.ListingEvent) (int, []string) {
	score := 50
	var reasons []string

	name := strings.ToLower(strings.TrimSpace(ev.SellerName))
	for _, p := range namePatterns {
		if p.re.MatchString(name) {
			score += p.score
			reasons = append(reasons, fmt.Sprintf("%s (%+d)", p.reason, p.score))
		}
	}

	if name != "" {
		if strings.ContainsAny(name, "0123456789") {
			score += 3
			reasons = append(reasons, "casual username (has numbers) (+3)")
		}
		if strings.Contains(name, "_") {
			score += 4
			reasons = append(reasons, "username with underscore (+4)")
		}
		if strings.Contains(name, "-") {
			score -= 5
			reasons = append(reasons, "username with dash (-5)")
		}
	}

	for _, b := range feedbackBuckets {
		if ev.FeedbackScore >= b.low && ev.FeedbackScore <= b.high {
			score += b.score
			if b.score != 0 {
				reasons = append(reasons, fmt.Sprintf("%s (%+d)", b.reason, b.score))
			}
			break
		}
	}

	condition := strings.ToLower(strings.ReplaceAll(ev.Condition, "+", " "))
	for key, s := range conditionScores {
		if strings.Contains(condition, key) {
			score += s
			if s != 0 {
				reasons = append(reasons, fmt.Sprintf("condition %q (%+d)", key, s))
			}
			break
		}
	}

	title := strings.ToLower(ev.Title)
	for key, s := range titleKeywordScores {
		if strings.Contains(title, key) {
			score += s
			reasons = append(reasons, fmt.Sprintf("title keyword %q (%+d)", key, s))
		}
	}

	if ev.BestOffer {
		score += 5
		reasons = append(reasons, "accepts best offer (+5)")
	}
	if ev.UPC != "" && ev.UPC != "N/A" && ev.UPC != "Does not apply" {
		score += 8
		reasons = append(reasons, "has UPC (+8)")
	}
	if ev.Description == "" {
		score += 5
		reasons = append(reasons, "no description (casual seller) (+5)")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

// Tier maps a score onto the priority scale used by validation.
func Tier(score int) string {
	switch {
	case score >= 80:
		return TierHigh
	case score >= 60:
		return TierMedium
	case score >= 40:
		return TierNormal
	default:
		return TierLow
	}
}
