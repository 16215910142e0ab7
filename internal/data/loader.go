package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/session-analytics/internal/config"
	"github.com/mohamedkhairy/session-analytics/internal/models"
	"github.com/mohamedkhairy/session-analytics/pkg/logger"
)

var (
	// ErrBadHeader is returned when a bar file does not carry the expected columns
	ErrBadHeader = errors.New("unexpected bar file header")
	// ErrBadRow is returned when a row cannot be parsed
	ErrBadRow = errors.New("malformed bar row")
)

// Loader defines the interface for bar history loaders. Implementations
// return nil bars (and nil error) when no history exists for the
// instrument, and guarantee ascending unique timestamps on success.
type Loader interface {
	// Load returns the full minute bar series for one instrument, already
	// converted to the exchange zone, or nil when absent.
	Load(ctx context.Context, instrument string) ([]models.Bar, error)
}

// FileLoader reads per-instrument CSV files from a directory. Files are
// named <SYMBOL>.csv with header time,open,high,low,close,volume and unix
// second timestamps.
type FileLoader struct {
	dir     string
	aliases map[string]string
	loc     *time.Location
}

// NewFileLoader creates a CSV bar loader
func NewFileLoader(cfg config.DataConfig, loc *time.Location) *FileLoader {
	return &FileLoader{
		dir:     cfg.Dir,
		aliases: cfg.Aliases,
		loc:     loc,
	}
}

// Canonical resolves ticker aliases to the on-disk symbol.
func (l *FileLoader) Canonical(instrument string) string {
	symbol := strings.ToUpper(strings.TrimSpace(instrument))
	if canonical, ok := l.aliases[symbol]; ok {
		return canonical
	}
	return symbol
}

// Load reads the bar series for one instrument. A missing file yields nil
// bars and nil error; structural problems in an existing file are errors.
func (l *FileLoader) Load(ctx context.Context, instrument string) ([]models.Bar, error) {
	symbol := l.Canonical(instrument)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty instrument", models.ErrInvalidSymbol)
	}
	path := filepath.Join(l.dir, symbol+".csv")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no bar file for instrument",
				logger.String("instrument", symbol),
				logger.String("path", path),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open bar file for %s: %w", symbol, err)
	}
	defer f.Close()

	bars, err := l.parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bar file for %s: %w", symbol, err)
	}

	logger.Info("loaded bar history",
		logger.String("instrument", symbol),
		logger.Int("bars", len(bars)),
	)
	return bars, nil
}

// columns of the bar file, in order.
var barColumns = []string{"time", "open", "high", "low", "close", "volume"}

func (l *FileLoader) parse(r io.Reader) ([]models.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(barColumns)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i, col := range barColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return nil, fmt.Errorf("%w: want %v, got %v", ErrBadHeader, barColumns, header)
		}
	}

	var bars []models.Bar
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		bar, err := parseRow(row, l.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRow, line, err)
		}

		// The engine assumes clean input; enforce the contract here.
		if n := len(bars); n > 0 {
			if bar.Timestamp.Before(bars[n-1].Timestamp) {
				return nil, fmt.Errorf("%w: line %d", models.ErrUnsortedBars, line)
			}
			if bar.Timestamp.Equal(bars[n-1].Timestamp) {
				return nil, fmt.Errorf("%w: line %d", models.ErrDuplicateTimestamp, line)
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseRow(row []string, loc *time.Location) (models.Bar, error) {
	unix, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("time: %w", err)
	}

	vals := make([]float64, 5)
	for i := 1; i < len(row); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("%s: %w", barColumns[i], err)
		}
		vals[i-1] = v
	}

	bar := models.Bar{
		Timestamp: time.Unix(unix, 0).In(loc),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}
	if err := bar.Validate(); err != nil {
		return models.Bar{}, err
	}
	return bar, nil
}
