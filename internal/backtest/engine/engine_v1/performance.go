package engine

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gocarina/gocsv"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-dma/internal/logger"
	"github.com/rxtech-lab/argo-dma/internal/types"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"go.uber.org/zap"
)

var performanceColumns = []string{
	"time", "price", "recorded", "short_mavg", "long_mavg", "buy", "sell",
	"cash", "position_quantity", "position_value", "portfolio_value", "fees",
}

// PerformanceRecorder keeps the per-day performance table of a run in an in-memory DuckDB table.
type PerformanceRecorder struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewPerformanceRecorder(log *logger.Logger) (*PerformanceRecorder, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to open database", err)
	}

	return &PerformanceRecorder{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the performance table.
func (r *PerformanceRecorder) Initialize() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS performance (
			time TIMESTAMP,
			price DOUBLE,
			recorded BOOLEAN,
			short_mavg DOUBLE,
			long_mavg DOUBLE,
			buy BOOLEAN,
			sell BOOLEAN,
			cash DOUBLE,
			position_quantity DOUBLE,
			position_value DOUBLE,
			portfolio_value DOUBLE,
			fees DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to create performance table", err)
	}

	return nil
}

// Record appends one day to the table.
func (r *PerformanceRecorder) Record(row types.PerformanceRow) error {
	_, err := r.sq.
		Insert("performance").
		Columns(performanceColumns...).
		Values(
			row.Time.UTC(), row.Price, row.Recorded, row.ShortAvg, row.LongAvg, row.Buy, row.Sell,
			row.Cash, row.PositionQuantity, row.PositionValue, row.PortfolioValue, row.Fees,
		).
		RunWith(r.db).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to record %s", row.Time.Format("2006-01-02"))
	}

	return nil
}

// Count returns the number of recorded days.
func (r *PerformanceRecorder) Count() (int, error) {
	var count int

	query, args, err := r.sq.Select("COUNT(*)").From("performance").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to count performance rows", err)
	}

	return count, nil
}

// Rows returns the table in chronological order.
func (r *PerformanceRecorder) Rows() ([]types.PerformanceRow, error) {
	query, args, err := r.sq.
		Select(performanceColumns...).
		From("performance").
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to query performance", err)
	}
	defer rows.Close()

	var result []types.PerformanceRow

	for rows.Next() {
		var (
			row       types.PerformanceRow
			timestamp time.Time
		)

		err := rows.Scan(
			&timestamp, &row.Price, &row.Recorded, &row.ShortAvg, &row.LongAvg, &row.Buy, &row.Sell,
			&row.Cash, &row.PositionQuantity, &row.PositionValue, &row.PortfolioValue, &row.Fees,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to scan performance row", err)
		}

		row.Time = timestamp.UTC()
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "error iterating performance rows", err)
	}

	return result, nil
}

// WriteParquet exports the table to a parquet file.
func (r *PerformanceRecorder) WriteParquet(path string) error {
	escaped := strings.ReplaceAll(path, "'", "''")

	// squirrel has no COPY support
	_, err := r.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM performance ORDER BY time ASC) TO '%s' (FORMAT PARQUET)`, escaped))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to export performance to %s", path)
	}

	r.logger.Debug("Performance written", zap.String("path", path))

	return nil
}

// WriteCSV exports the table to a CSV file with a header row.
func (r *PerformanceRecorder) WriteCSV(path string) error {
	rows, err := r.Rows()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to write %s", path)
	}

	r.logger.Debug("Performance written", zap.String("path", path), zap.Int("rows", len(rows)))

	return nil
}

// Cleanup removes every recorded day so the recorder can be reused for the next run.
func (r *PerformanceRecorder) Cleanup() error {
	query, args, err := r.sq.Delete("performance").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to clean up performance", err)
	}

	return nil
}

func (r *PerformanceRecorder) Close() error {
	if r.db != nil {
		err := r.db.Close()
		r.db = nil

		return err
	}

	return nil
}
