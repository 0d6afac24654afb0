// seed loads the demo catalog, clients and vendors for a fresh database.
// Re-running refreshes products and vendors; clients are inserted only once,
// since resetting their balances would desync them from the credit ledger.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"heladeria-pos/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (name, price, stock, min_stock, icon)
		VALUES
		  ('Vainilla',        3.00, 50, 10, '🍦'),
		  ('Chocolate',       3.00, 45, 10, '🍫'),
		  ('Fresa',           3.50,  8, 10, '🍓'),
		  ('Cookies & Cream', 4.00, 30,  8, '🍪'),
		  ('Menta',           3.50, 25,  8, '🌿'),
		  ('Mango',           3.50, 20,  8, '🥭')
		ON CONFLICT (name) DO UPDATE
		  SET price = EXCLUDED.price,
		      stock = EXCLUDED.stock,
		      min_stock = EXCLUDED.min_stock,
		      icon = EXCLUDED.icon;
	`)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding clients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO clients (name, phone, email, credit_limit, current_debt)
		VALUES
		  ('Ana Martínez',   '555-0101', 'ana@example.com',    100.00, 35.00),
		  ('Luis Rodríguez', '555-0102', NULL,                  50.00,  0.00),
		  ('Carmen Soto',    '555-0103', 'carmen@example.com',  80.00, 12.50)
		ON CONFLICT (name) DO NOTHING;
	`)
	if err != nil {
		log.Fatalf("Failed to seed clients: %v", err)
	}

	// Ana and Carmen start with open debt. Give the ledger matching entries so
	// the sum of transactions reconciles with current_debt from day one.
	log.Println("Seeding opening ledger entries...")
	_, err = tx.Exec(ctx, `
		INSERT INTO credit_transactions (client_id, client_name, amount, type, description)
		SELECT c.id, c.name, c.current_debt, 'debt', 'Saldo inicial'
		FROM clients c
		WHERE c.current_debt > 0
		  AND NOT EXISTS (
		    SELECT 1 FROM credit_transactions t WHERE t.client_id = c.id
		  );
	`)
	if err != nil {
		log.Fatalf("Failed to seed ledger entries: %v", err)
	}

	log.Println("Seeding vendors...")
	_, err = tx.Exec(ctx, `
		INSERT INTO vendors (name, role, icon, is_active)
		VALUES
		  ('María',  'owner',  '👩', true),
		  ('Carlos', 'seller', '👨', true),
		  ('Sofía',  'seller', '👧', true)
		ON CONFLICT (name) DO UPDATE
		  SET role = EXCLUDED.role,
		      icon = EXCLUDED.icon,
		      is_active = EXCLUDED.is_active;
	`)
	if err != nil {
		log.Fatalf("Failed to seed vendors: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed data loaded.")
}
