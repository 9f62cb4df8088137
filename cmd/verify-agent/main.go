// verify-agent sends one sample question to the CFO assistant with fixed
// metrics and prints the structured answer. It checks the API key and the
// response schema without touching any data.
//
// Usage: go run ./cmd/verify-agent ["question"]
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"invoizo/internal/ai"
	"invoizo/internal/config"
	"invoizo/internal/core"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AI.APIKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	cfo := ai.NewCFO(cfg.AI.APIKey, cfg.AI.Model)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	metrics := core.BusinessMetrics{
		Revenue:           core.AmountFromInt(1250000),
		Expenses:          core.AmountFromInt(310000),
		Profit:            core.AmountFromInt(940000),
		CashFlow:          core.AmountFromInt(420000),
		Customers:         48,
		ActiveCustomers:   31,
		Products:          120,
		SalesBillCount:    612,
		PurchaseBillCount: 95,
	}

	query := "Where is cash getting stuck and what should we do this month?"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("QUERY: %s\n", query)
	a, err := cfo.Analyze(ctx, query, metrics)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n--- ANSWER ---\n")
	fmt.Printf("Summary: %s\n", a.Answer.Summary)
	for _, s := range a.Answer.Sections {
		fmt.Printf("\n%s\n", s.Title)
		for _, p := range s.Points {
			fmt.Printf("- %s\n", p)
		}
	}
	if len(a.Answer.Recommendations) > 0 {
		fmt.Printf("\nRecommendations:\n")
		for _, r := range a.Answer.Recommendations {
			fmt.Printf("- %s\n", r)
		}
	}
}
