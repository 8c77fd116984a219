// backend-go/cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing seed CSV files",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Initialize the schema and load fixture data",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: applySchema,
			},
			{
				Name:   "master",
				Usage:  "Seed master data (stores, suppliers, products)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedMaster,
			},
			{
				Name:   "planning",
				Usage:  "Seed planning data (lead times, forecasts, opening stock)",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: seedPlanning,
			},
			{
				Name:  "all",
				Usage: "Apply the schema and seed everything",
				Flags: []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Action: func(c *cli.Context) error {
					if err := applySchema(c); err != nil {
						return err
					}
					if err := seedMaster(c); err != nil {
						return err
					}
					return seedPlanning(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withTx(c *cli.Context, fn func(ctx context.Context, tx *sql.Tx, dataDir string) error) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx, c.String("data-dir")); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func seedMaster(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx, dataDir string) error {
		log.Println("Seeding master data...")
		if err := seedStores(ctx, tx, filepath.Join(dataDir, "stores.csv")); err != nil {
			return fmt.Errorf("failed to seed stores: %w", err)
		}
		if err := seedSuppliers(ctx, tx, filepath.Join(dataDir, "suppliers.csv")); err != nil {
			return fmt.Errorf("failed to seed suppliers: %w", err)
		}
		if err := seedProducts(ctx, tx, filepath.Join(dataDir, "products.csv")); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		log.Println("Master data seeded successfully!")
		return nil
	})
}

func seedPlanning(c *cli.Context) error {
	return withTx(c, func(ctx context.Context, tx *sql.Tx, dataDir string) error {
		log.Println("Seeding planning data...")
		if err := seedLeadTimes(ctx, tx, filepath.Join(dataDir, "lead_times.csv")); err != nil {
			return fmt.Errorf("failed to seed lead times: %w", err)
		}
		if err := seedForecasts(ctx, tx, filepath.Join(dataDir, "forecasts.csv")); err != nil {
			return fmt.Errorf("failed to seed forecasts: %w", err)
		}
		if err := seedOpeningStock(ctx, tx, filepath.Join(dataDir, "opening_stock.csv")); err != nil {
			return fmt.Errorf("failed to seed opening stock: %w", err)
		}
		log.Println("Planning data seeded successfully!")
		return nil
	})
}

// seedStores expects columns: code,name
func seedStores(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stores (id, code, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		`, uuid.New(), row["code"], row["name"])
		return err
	})
}

// seedSuppliers expects columns: code,name,lead_time_days,min_order_quantity,min_order_value_cents
func seedSuppliers(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		leadTime, err := atoiField(row, "lead_time_days")
		if err != nil {
			return err
		}
		minQty, err := atoiField(row, "min_order_quantity")
		if err != nil {
			return err
		}
		minValue, err := atoiField(row, "min_order_value_cents")
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO suppliers (id, code, name, lead_time_days, min_order_quantity, min_order_value)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (code) DO UPDATE SET
				name = EXCLUDED.name,
				lead_time_days = EXCLUDED.lead_time_days,
				min_order_quantity = EXCLUDED.min_order_quantity,
				min_order_value = EXCLUDED.min_order_value,
				updated_at = now()
		`, uuid.New(), row["code"], row["name"], leadTime, minQty, minValue)
		return err
	})
}

// seedProducts expects columns: sku,name,supplier_code,unit_cost_cents,case_pack_size
func seedProducts(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		unitCost, err := atoiField(row, "unit_cost_cents")
		if err != nil {
			return err
		}
		casePack, err := atoiField(row, "case_pack_size")
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, sku, name, supplier_id, unit_cost, case_pack_size)
			SELECT $1, $2, $3, s.id, $5, $6
			FROM suppliers s WHERE s.code = $4
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name,
				supplier_id = EXCLUDED.supplier_id,
				unit_cost = EXCLUDED.unit_cost,
				case_pack_size = EXCLUDED.case_pack_size,
				updated_at = now()
		`, uuid.New(), row["sku"], row["name"], row["supplier_code"], unitCost, casePack)
		return err
	})
}

// seedLeadTimes expects columns: supplier_code,lead_time_days,std_days,p50,p90,p95,reliability,on_time_rate,sample_size
func seedLeadTimes(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO supplier_lead_time_profiles (
				id, supplier_id, product_id, lead_time_days, lead_time_std_days,
				p50_lead_time_days, p90_lead_time_days, p95_lead_time_days,
				reliability_score, on_time_delivery_rate, sample_size
			)
			SELECT $1, s.id, NULL, $3, $4, $5, $6, $7, $8, $9, $10
			FROM suppliers s WHERE s.code = $2
			ON CONFLICT (supplier_id, product_id) DO UPDATE SET
				lead_time_days = EXCLUDED.lead_time_days,
				lead_time_std_days = EXCLUDED.lead_time_std_days,
				p50_lead_time_days = EXCLUDED.p50_lead_time_days,
				p90_lead_time_days = EXCLUDED.p90_lead_time_days,
				p95_lead_time_days = EXCLUDED.p95_lead_time_days,
				reliability_score = EXCLUDED.reliability_score,
				on_time_delivery_rate = EXCLUDED.on_time_delivery_rate,
				sample_size = EXCLUDED.sample_size,
				updated_at = now()
		`, uuid.New(), row["supplier_code"], row["lead_time_days"], row["std_days"],
			row["p50"], row["p90"], row["p95"],
			row["reliability"], row["on_time_rate"], row["sample_size"])
		return err
	})
}

// seedForecasts expects columns: store_code,sku,forecast_date,horizon_days,p50,p90,p95,model_type,model_version
func seedForecasts(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO demand_forecasts (
				id, store_id, product_id, forecast_date, horizon_days,
				p50_forecast, p90_forecast, p95_forecast,
				model_type, model_version, is_active
			)
			SELECT $1, st.id, p.id, $4::timestamptz, $5, $6, $7, $8, $9, $10, TRUE
			FROM stores st, products p
			WHERE st.code = $2 AND p.sku = $3
		`, uuid.New(), row["store_code"], row["sku"], row["forecast_date"], row["horizon_days"],
			row["p50"], row["p90"], row["p95"], row["model_type"], row["model_version"])
		return err
	})
}

// seedOpeningStock expects columns: store_code,sku,quantity_on_hand,cost_per_unit_cents,reorder_point
func seedOpeningStock(ctx context.Context, tx *sql.Tx, path string) error {
	return forEachRecord(path, func(row map[string]string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_snapshots (
				id, store_id, product_id, quantity_on_hand, quantity_reserved,
				quantity_on_order, cost_per_unit, reorder_point, change_reason
			)
			SELECT $1, st.id, p.id, $4, 0, 0, $5, $6, 'opening_stock'
			FROM stores st, products p
			WHERE st.code = $2 AND p.sku = $3
		`, uuid.New(), row["store_code"], row["sku"],
			row["quantity_on_hand"], row["cost_per_unit_cents"], row["reorder_point"])
		return err
	})
}

// forEachRecord streams a CSV file with a header row, passing each record as
// a header-keyed map. A missing file is skipped so partial fixture sets work.
func forEachRecord(path string, fn func(row map[string]string) error) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("skipping %s: file not found", path)
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header of %s: %w", path, err)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}

	log.Printf("Seeded %s", path)
	return nil
}

func atoiField(row map[string]string, col string) (int, error) {
	raw := row[col]
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", col, raw)
	}
	return parsed, nil
}
