package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/sellfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateRecordsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS report_files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		report_number TEXT NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS report_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_id TEXT NOT NULL,
		sale_date TEXT,
		operation_kind INTEGER NOT NULL,
		operation_label TEXT NOT NULL,
		sku TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		realized_amount REAL NOT NULL,
		transfer_amount REAL NOT NULL,
		logistics_fee REAL NOT NULL,
		fines_amount REAL NOT NULL,
		storage_fee REAL NOT NULL,
		withholdings_amount REAL NOT NULL,
		acceptance_fee REAL NOT NULL,
		commission_rate_pct REAL NOT NULL,
		acquiring_rate_pct REAL NOT NULL,
		retail_price REAL NOT NULL,
		retail_price_discount REAL NOT NULL,
		agreed_discount_pct REAL NOT NULL,
		nomenclature_id TEXT,
		brand TEXT,
		subject TEXT,
		barcode TEXT,
		FOREIGN KEY(file_id) REFERENCES report_files(id)
	);

	CREATE INDEX IF NOT EXISTS idx_report_records_file ON report_records(file_id);
	CREATE INDEX IF NOT EXISTS idx_report_records_sku ON report_records(sku);

	CREATE TABLE IF NOT EXISTS cost_prices (
		sku TEXT PRIMARY KEY,
		unit_cost REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS locked_prices (
		sku TEXT PRIMARY KEY,
		site_price REAL NOT NULL
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateRecordsTable adds columns introduced after the first release to an
// existing report_records table.
func migrateRecordsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='report_records'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		if logger.L != nil {
			logger.L.Error("Error checking for report_records table", "error", err)
		} else {
			stdlog.Printf("Error checking for report_records table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(report_records)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for report_records", "error", err)
		} else {
			stdlog.Printf("Error querying table schema: %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "error", err)
			} else {
				stdlog.Printf("Error scanning column info: %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info: %v", err)
		}
		return
	}

	addColumn := func(name, definition string) {
		if columnExists[name] {
			return
		}
		if _, err := DB.Exec("ALTER TABLE report_records ADD COLUMN " + name + " " + definition); err != nil {
			if logger.L != nil {
				logger.L.Error("Error adding column to report_records", "column", name, "error", err)
			} else {
				stdlog.Printf("Error adding %s column: %v", name, err)
			}
		} else if logger.L != nil {
			logger.L.Info("Added column to report_records table", "column", name)
		}
	}

	addColumn("retail_price", "REAL NOT NULL DEFAULT 0")
	addColumn("retail_price_discount", "REAL NOT NULL DEFAULT 0")
	addColumn("agreed_discount_pct", "REAL NOT NULL DEFAULT 0")
	addColumn("nomenclature_id", "TEXT")
	addColumn("brand", "TEXT")
	addColumn("subject", "TEXT")
	addColumn("barcode", "TEXT")
}
