package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/veldcommerce/veld/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createDiscountCodeTable(db)
	if err != nil {
		return nil, err
	}
	err = createOrderTables(db)
	if err != nil {
		return nil, err
	}
	err = createPaymentTable(db)
	if err != nil {
		return nil, err
	}
	err = createCommissionTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createDiscountCodeTable creates a PostgreSQL table for the DiscountCode struct
func createDiscountCodeTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS discount_codes (
			id SERIAL PRIMARY KEY,
			code_id TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL CHECK (kind IN ('influencer', 'lead_reservation')),
			discount_type TEXT NOT NULL CHECK (discount_type IN ('percentage', 'fixed')),
			discount_value DECIMAL NOT NULL,
			commission_type TEXT CHECK (commission_type IN ('percentage', 'fixed')),
			commission_value DECIMAL,
			min_purchase BIGINT,
			max_uses BIGINT,
			used_count BIGINT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			lead_id TEXT,
			valid_from TIMESTAMPTZ NOT NULL,
			valid_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating discount_codes table: %v", err)
	}
	return err
}

// createOrderTables creates PostgreSQL tables for the Order and OrderItem structs
func createOrderTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL UNIQUE,
			discount_code_id TEXT REFERENCES discount_codes(code_id),
			discount_amount BIGINT NOT NULL DEFAULT 0,
			discount_redeemed BOOLEAN NOT NULL DEFAULT FALSE,
			total_amount BIGINT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating orders table: %v", err)
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(order_id),
			product_id TEXT NOT NULL,
			quantity BIGINT NOT NULL,
			unit_price BIGINT NOT NULL
		)
	`)
	if err != nil {
		log.Printf("Error creating order_items table: %v", err)
	}
	return err
}

// createPaymentTable creates a PostgreSQL table for the Payment struct.
// provider_ref is unique: re-delivery of the same provider event can never
// create a second payment row.
func createPaymentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			order_id TEXT NOT NULL REFERENCES orders(order_id),
			provider_ref TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			amount BIGINT NOT NULL,
			raw_payload JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating payments table: %v", err)
	}
	return err
}

// createCommissionTable creates a PostgreSQL table for the Commission struct.
// code_id is unique: settlement records at most one commission per code.
func createCommissionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS commissions (
			id SERIAL PRIMARY KEY,
			commission_id TEXT NOT NULL UNIQUE,
			code_id TEXT NOT NULL UNIQUE REFERENCES discount_codes(code_id),
			kind TEXT NOT NULL,
			basis BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating commissions table: %v", err)
	}
	return err
}
