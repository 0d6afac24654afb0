package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "heladeria-pos/internal/adapters/web"
	"heladeria-pos/internal/app"
	"heladeria-pos/internal/core"
	"heladeria-pos/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	catalogService := core.NewCatalogService(pool)
	clientService := core.NewClientService(pool)
	vendorService := core.NewVendorService(pool)
	saleService := core.NewSaleService(pool)
	creditService := core.NewCreditService(pool)
	reportingService := core.NewReportingService(pool)

	svc := app.NewAppService(catalogService, clientService, vendorService, saleService, creditService, reportingService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
