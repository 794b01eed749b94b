package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/dpup/prefab"
	"github.com/joho/godotenv"

	api "github.com/maxsviluppo/Aitraffic/api/v1"
	"github.com/maxsviluppo/Aitraffic/internal/cache"
	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/services"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

func main() {
	// A missing .env is fine; the environment may already carry the key
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	// Configuration is loaded from prefab.yaml and PF__ environment variables
	appConfig, err := config.Load(prefab.Config)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	var answerCache *cache.Cache
	if appConfig.Cache.Enabled {
		answerCache = cache.NewCache(appConfig.Cache.Capacity)
		answerCache.StartPeriodicCleanup(ctx, appConfig.Cache.CleanupInterval)
	}

	provider, err := services.NewProvider(appConfig, answerCache)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}
	if appConfig.Provider.APIKey == "" {
		log.Printf("No API key configured: searches will fail until transito.provider.api_key is set")
	}

	var saved services.SavedSearchStore
	if appConfig.Store.Path != "" {
		st, err := store.Open(ctx, appConfig.Store.Path)
		if err != nil {
			log.Fatalf("Failed to open saved search store: %v", err)
		}
		defer st.Close()
		saved = st
	}

	transitService := services.NewTransitService(provider, saved, appConfig)

	log.Printf("TRANSITO server starting")
	log.Printf("Provider: %s (model: %s)", appConfig.Provider.Kind, appConfig.Provider.Model)
	log.Printf("Saved searches: %s", storeDescription(appConfig.Store.Path))

	if appConfig.Monitor.Enabled {
		monitor := services.NewMonitorService(transitService, appConfig.Monitor.Interval)
		if err := monitor.Start(ctx); err != nil {
			log.Printf("Failed to start saved search monitor: %v", err)
		}
		defer monitor.Stop()
	}

	handler := api.NewHandler(transitService).Router()

	// Server configuration (port, etc.) will be loaded from prefab.yaml/env vars
	server := prefab.New(
		prefab.WithHTTPHandlerFunc(api.Prefix, handler.ServeHTTP),
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
	)

	// Start the server (blocks until shutdown)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func storeDescription(path string) string {
	if path == "" {
		return "disabled"
	}
	return path
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>TRANSITO</title>
    <style>
        body { 
            font-family: 'Courier New', Consolas, monospace; 
            background: #000; 
            color: #0f0; 
            padding: 20px; 
            line-height: 1.4; 
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
    </style>
</head>
<body>
<pre>
<span class="header">TRANSITO</span>

Telemetria trasporti e traffico in tempo reale: orari, stato delle linee,
costi e punti sulla mappa, generati da un modello con ricerca web.

<span class="header">Repository:</span>
<a href="https://github.com/maxsviluppo/Aitraffic">https://github.com/maxsviluppo/Aitraffic</a>

<span class="header">API Endpoints:</span>

Search:
  POST /api/v1/search                     - {"query", "type", "lat", "lng"}
  <a href="/api/v1/results">GET /api/v1/results</a>                     - Last three results
  DELETE /api/v1/results                  - System clear
  GET /api/v1/results/{i}                 - One result
  GET /api/v1/results/{i}/html            - Rendered telemetry
  GET /api/v1/results/{i}/map             - Map view (markers, bounds, zoom)
  GET /api/v1/results/{i}/points?near=m   - Map points, optionally near you
  GET /api/v1/results/{i}/points.kml      - Map points as KML

Saved searches:
  <a href="/api/v1/saved">GET /api/v1/saved</a>                       - List
  POST /api/v1/saved                      - Toggle {"query", "type"}
  DELETE /api/v1/saved/{id}               - Delete
  POST /api/v1/saved/{id}/run             - Run again

  <a href="/api/v1/health">GET /api/v1/health</a>                      - Provider and store status

<span class="header">Transport types:</span>
  ALL, TRAIN, METRO, PLANE, SHIP, ROAD

<span class="header">Example Usage:</span>
  curl -X POST localhost:8000/api/v1/search -d '{"query":"Milano - Torino","type":"TRAIN"}'
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}
