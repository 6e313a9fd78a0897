package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"westernpos/m/internal/api"
	"westernpos/m/internal/auth"
	"westernpos/m/internal/catalog"
	"westernpos/m/internal/config"
	"westernpos/m/internal/database"
	"westernpos/m/internal/migrations"
	"westernpos/m/internal/receipt"
	"westernpos/m/internal/sale"
	"westernpos/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadProducts(db, cfg.CatalogCSV)
	if err := seed.EnsureOperator(db, cfg.AdminName, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("operator bootstrap failed: %v", err)
	}

	printer, err := receipt.NewPrinter(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Fatalf("printer setup failed: %v", err)
	}
	header := receipt.Header{StoreName: cfg.Store.Name, Address: cfg.Store.Address, Phone: cfg.Store.Phone}

	products := catalog.New(db)
	handler := api.New(api.Options{
		Catalog:        products,
		Index:          catalog.Load(context.Background(), products),
		Sales:          sale.NewService(db),
		Auth:           auth.NewService(db, cfg.Secret),
		Receipts:       receipt.NewPresenter(header, printer, cfg.Printer.Width),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	log.Printf("POS backend starting on 127.0.0.1:%s (database %s)", cfg.HTTPPort, cfg.DatabaseDSN)
	if err := http.ListenAndServe("127.0.0.1:"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
