package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/prompt"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/services"
)

func main() {
	var (
		kind    = flag.String("provider", config.ProviderGemini, "Provider kind: gemini or openai")
		apiKey  = flag.String("api-key", "", "API key (or set TRANSITO_API_KEY env var)")
		model   = flag.String("model", "", "Model name (defaults per provider)")
		baseURL = flag.String("base-url", "", "Base URL override")
		query   = flag.String("query", "Roma Termini - Napoli Centrale", "Query to send")
		typ     = flag.String("type", "TRAIN", "Transport type")
		raw     = flag.Bool("raw", false, "Print the raw model response")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fmt.Printf("Search Provider Test Tool\n\n")
		fmt.Printf("Sends one dashboard prompt to a live provider and checks the answer format.\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -api-key=YOUR_KEY\n", os.Args[0])
		fmt.Printf("  %s -provider=openai -base-url=http://localhost:11434/v1 -model=llama3.1\n", os.Args[0])
		fmt.Printf("  TRANSITO_API_KEY=your_key %s -query=\"A1 Milano Bologna\" -type=ROAD\n", os.Args[0])
		return
	}

	_ = godotenv.Load()

	key := *apiKey
	if key == "" {
		key = os.Getenv("TRANSITO_API_KEY")
	}
	if key == "" {
		log.Fatal("API key required. Use -api-key flag or TRANSITO_API_KEY env var")
	}

	cfg := config.DefaultConfig()
	cfg.Provider.Kind = *kind
	cfg.Provider.APIKey = key
	cfg.Provider.BaseURL = *baseURL
	cfg.Cache.Enabled = false
	if *model != "" {
		cfg.Provider.Model = *model
	} else if *kind == config.ProviderOpenAI {
		cfg.Provider.Model = "gpt-4o-mini"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	provider, err := services.NewProvider(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	t := telemetry.TransportType(strings.ToUpper(*typ))
	p := prompt.Build(*query, t, nil)

	fmt.Printf("Search Provider Test\n")
	fmt.Printf("====================\n")
	fmt.Printf("Provider: %s (%s)\n", cfg.Provider.Kind, cfg.Provider.Model)
	fmt.Printf("Query: %s [%s]\n", *query, t)
	fmt.Printf("API Key: %s...\n", key[:min(len(key), 10)])
	fmt.Printf("Prompt: %d bytes\n\n", len(p))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.Timeout)
	defer cancel()

	start := time.Now()
	answer, err := provider.Generate(ctx, p)
	if err != nil {
		fmt.Printf("❌ Generate failed: %v\n", err)
		fmt.Printf("   User message: %s\n", search.UserMessage(err))
		os.Exit(1)
	}
	fmt.Printf("✅ Answer in %v (%d bytes, %d sources)\n", time.Since(start).Round(time.Millisecond), len(answer.Text), len(answer.Sources))

	parsed := telemetry.Parse(answer.Text)
	nodes := display.Render(parsed.CleanedText)

	tables := 0
	for _, n := range nodes {
		if n.Kind == display.BlockTable {
			tables++
		}
	}

	check("GEO_DATA directive present", telemetry.HasDirective(answer.Text))
	check("GEO_DATA decoded", parsed.DirectiveErr == nil && len(parsed.Points) > 0)
	check("telemetry table present", tables > 0)
	fmt.Printf("   Points: %d, tables: %d, alert: %v\n", len(parsed.Points), tables, display.HasAlert(parsed.CleanedText))

	for i, s := range answer.Sources {
		fmt.Printf("   Source %d: %s (%s)\n", i+1, s.Title, s.URI)
	}

	if *raw {
		fmt.Printf("\nRaw response:\n%s\n", answer.Text)
	} else {
		fmt.Printf("\n%s\n", display.Terminal(nodes))
	}
}

func check(name string, ok bool) {
	if ok {
		fmt.Printf("✅ %s\n", name)
	} else {
		fmt.Printf("⚠️  %s\n", name)
	}
}
