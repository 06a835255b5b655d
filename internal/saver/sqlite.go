package saver

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"monthly-ohlcv/internal/model"
)

const createMonthlyBars = `
	CREATE TABLE monthly_bars (
		ticker   TEXT NOT NULL,
		date     TEXT NOT NULL,
		open     REAL NOT NULL,
		high     REAL NOT NULL,
		low      REAL NOT NULL,
		close    REAL NOT NULL,
		volume   REAL NOT NULL,
		adjclose REAL NOT NULL,
		sma_10   REAL,
		sma_20   REAL,
		ema_10   REAL,
		ema_20   REAL,
		PRIMARY KEY (ticker, date)
	)`

const insertMonthlyBar = `
	INSERT INTO monthly_bars (ticker, date, open, high, low, close, volume, adjclose, sma_10, sma_20, ema_10, ema_20)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSaver writes rows into a fresh SQLite database file with one
// monthly_bars table. Undefined indicators are NULL.
type SQLiteSaver struct{}

func (SQLiteSaver) Extension() string { return "db" }

func (SQLiteSaver) Save(rows []model.IndicatorRow, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sqlite remove old: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=DELETE&_synchronous=NORMAL")
	if err != nil {
		return fmt.Errorf("sqlite open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createMonthlyBars); err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(insertMonthlyBar)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range ToRecords(rows) {
		if _, err := stmt.Exec(r.Ticker, r.Date, r.Open, r.High, r.Low, r.Close, r.Volume, r.AdjustedClose,
			r.SMA10, r.SMA20, r.EMA10, r.EMA20); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert %s %s: %w", r.Ticker, r.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return db.Close()
}
