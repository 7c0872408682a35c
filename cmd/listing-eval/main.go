package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/adapters/httpserver"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
	"github.com/logandweckerle/ubuyfirst-proxy/internal/di"
)

// listingInput is the JSON shape accepted on stdin or via -file.
type listingInput struct {
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
	MediaURLs     []string          `json:"media_urls"`
	Attributes    map[string]string `json:"attributes"`
}

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(
		logger *zap.Logger,
		service *core.EvaluatorService,
		renderer *httpserver.HTMLRenderer,
	) error {
		defer logger.Sync()

		ev, err := readListing(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to read listing", zap.Error(err))
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		decision, display := service.Evaluate(ctx, ev)

		if flags.HTMLOutput {
			if display == "" {
				display = renderer.RenderHTML(decision, ev)
			}
			fmt.Println(display)
			return nil
		}
		out, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}); err != nil {
		fmt.Printf("Evaluation error: %v\n", err)
		os.Exit(1)
	}
}

// readListing reads a listing from a file or stdin.
func readListing(path string) (*core.ListingEvent, error) {
	var reader io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var in listingInput
	if err := json.NewDecoder(reader).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to parse listing JSON: %w", err)
	}

	return &core.ListingEvent{
		Title:         in.Title,
		TotalPrice:    in.TotalPrice,
		ItemPrice:     in.ItemPrice,
		SellerName:    in.SellerName,
		FeedbackScore: in.FeedbackScore,
		CategoryHint:  in.CategoryHint,
		Condition:     in.Condition,
		BestOffer:     in.BestOffer,
		UPC:           in.UPC,
		Description:   in.Description,
		PostedAt:      time.Now(),
		MediaURLs:     in.MediaURLs,
		Attributes:    in.Attributes,
	}, nil
}
