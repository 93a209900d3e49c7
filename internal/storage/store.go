package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// header is the persisted schema, a cross-run contract: one data row per
// observation, dates as YYYY-MM-DD, prices as plain decimal numbers.
var header = []string{"product_id", "product_name", "site", "date", "price"}

// HistoryStore abstracts price history persistence.
type HistoryStore interface {
	Load() (*Table, error)
	Save(table *Table) error
}

// Store persists the history table as a flat CSV file.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore wires a CSV file path into a Store.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger.With().Str("component", "storage").Logger()}
}

// Load reads the persisted table. When no file exists yet, an empty table
// is returned and the header-only file is written eagerly so the storage
// location is always in a valid, parseable state after first use.
func (s *Store) Load() (*Table, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Str("path", s.path).Msg("no history found, creating empty table")
		table := NewTable()
		if saveErr := s.Save(table); saveErr != nil {
			return nil, saveErr
		}
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("history %s is empty, expected header row", s.path)
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("history %s: %w", s.path, err)
	}

	table := NewTable()
	for i, record := range records[1:] {
		obs, err := decodeRow(record)
		if err != nil {
			return nil, fmt.Errorf("history %s row %d: %w", s.path, i+2, err)
		}
		table = table.Append(obs)
	}

	s.logger.Debug().Int("rows", table.Len()).Msg("history loaded")
	return table, nil
}

// Save rewrites the whole table, replacing prior content.
func (s *Store) Save(table *Table) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, obs := range table.Rows() {
		record := []string{
			obs.ProductID,
			obs.ProductName,
			obs.Site,
			obs.Date.Format(DateLayout),
			obs.Price.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write history row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func checkHeader(record []string) error {
	if len(record) != len(header) {
		return fmt.Errorf("unexpected header width %d", len(record))
	}
	for i, name := range header {
		if record[i] != name {
			return fmt.Errorf("unexpected header column %q, want %q", record[i], name)
		}
	}
	return nil
}

func decodeRow(record []string) (Observation, error) {
	if len(record) != len(header) {
		return Observation{}, fmt.Errorf("unexpected row width %d", len(record))
	}

	date, err := time.Parse(DateLayout, record[3])
	if err != nil {
		return Observation{}, fmt.Errorf("parse date: %w", err)
	}
	price, err := decimal.NewFromString(record[4])
	if err != nil {
		return Observation{}, fmt.Errorf("parse price: %w", err)
	}

	return Observation{
		ProductID:   record[0],
		ProductName: record[1],
		Site:        record[2],
		Date:        date,
		Price:       price,
	}, nil
}

var _ HistoryStore = (*Store)(nil)
