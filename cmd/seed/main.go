// seed inserts one manager and one regular employee, plus a few demo
// products, into the local dev database. Re-runs are idempotent.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/meowfish/shop-api/config"
	"github.com/meowfish/shop-api/internal/auth"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/infrastructure/postgres"
)

type employeeSpec struct {
	email     string
	password  string
	firstName string
	lastName  string
	isManager bool
	hiredAgo  time.Duration
}

type productSpec struct {
	name  string
	price float64
	stock int
	kind  domain.ProductType
}

var products = []productSpec{
	{"Galaxy Fold", 999.99, 12, domain.ProductPhone},
	{"Pixel Stand", 79.00, 40, domain.ProductAccessory},
	{"Usb-C Cable", 9.50, 200, domain.ProductAccessory},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	employees := postgres.NewEmployeeRepository(pool)

	specs := []employeeSpec{
		{cfg.AdminEmail, cfg.AdminPassword, "Louis", "Huang", true, 30 * 24 * time.Hour},
		{cfg.UserEmail, cfg.UserPassword, "Alice", "Maxwell", false, 0},
	}

	var created, skipped int
	for _, spec := range specs {
		exists, err := employees.Exists(ctx, spec.email)
		if err != nil {
			log.Fatalf("check employee %s: %v", spec.email, err)
		}
		if exists {
			skipped++
			continue
		}

		hash, err := auth.HashPassword(spec.password)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}

		_, err = employees.Create(ctx, &domain.Employee{
			Email:        spec.email,
			PasswordHash: hash,
			FirstName:    spec.firstName,
			LastName:     spec.lastName,
			IsManager:    spec.isManager,
		}, time.Now().Add(-spec.hiredAgo))
		if err != nil {
			log.Fatalf("create employee %s: %v", spec.email, err)
		}
		created++
	}

	// Demo products, skipped when one with the same name is already there.
	productRepo := postgres.NewProductRepository(pool)
	var productsCreated int
	for _, spec := range products {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, spec.name,
		).Scan(&exists)
		if err != nil {
			log.Fatalf("check product %s: %v", spec.name, err)
		}
		if exists {
			continue
		}

		_, err = productRepo.Create(ctx, &domain.Product{
			Name:         spec.name,
			UnitPrice:    spec.price,
			UnitsInStock: spec.stock,
			Type:         spec.kind,
		})
		if err != nil {
			log.Fatalf("create product %s: %v", spec.name, err)
		}
		productsCreated++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Employees created: %d  (skipped %d already existing)\n", created, skipped)
	fmt.Printf("  Products created:  %d\n", productsCreated)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in as the manager:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/v1/auth/login \\\n")
	fmt.Printf("      -d 'username=%s' -d 'password=%s'\n", cfg.AdminEmail, cfg.AdminPassword)
	fmt.Println("    # → {\"access_token\":\"eyJ...\",\"token_type\":\"bearer\"}")
	fmt.Println()
	fmt.Println("  Step 2 — create a product (manager only):")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s -X POST http://localhost:8080/api/v1/products \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"product_name\":\"test phone\",\"unit_price\":199.99,\"units_in_stock\":5,\"type\":\"phone\"}'")
	fmt.Println()
	fmt.Println("  Step 3 — run ./cmd/worker and watch the notification task pick up the run ID")
	fmt.Println("  returned in notification_run_id.")
}
