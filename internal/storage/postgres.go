package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"miracars-bot/pkg/redis"
)

const statsCacheKey = "booking_stats"
const statsCacheTTL = 5 * time.Minute

type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ReportsDir      string
}

type PostgresStorage struct {
	db         *sqlx.DB
	redis      *redis.Client
	logger     *zap.Logger
	reportsDir string
}

// Booking is an archived booking submission with its full price breakdown.
type Booking struct {
	ID            int64     `db:"id"`
	ChatID        int64     `db:"chat_id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Category      string    `db:"category"`
	Extras        string    `db:"extras"`
	PickupDate    time.Time `db:"pickup_date"`
	DropoffDate   time.Time `db:"dropoff_date"`
	Days          int       `db:"days"`
	BasePrice     float64   `db:"base_price"`
	ExtrasPrice   float64   `db:"extras_price"`
	Total         float64   `db:"total"`
	Deposit       float64   `db:"deposit"`
	PaymentMethod string    `db:"payment_method"`
	Notes         string    `db:"notes"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

// ValidStatuses are the accepted booking lifecycle states.
var ValidStatuses = map[string]bool{
	"new":       true,
	"confirmed": true,
	"completed": true,
	"cancelled": true,
}

type BookingStatistics struct {
	TotalBookings int64            `db:"total_bookings"`
	TotalRevenue  float64          `db:"total_revenue"`
	TodayBookings int64            `db:"today_bookings"`
	TodayRevenue  float64          `db:"today_revenue"`
	WeekBookings  int64            `db:"week_bookings"`
	WeekRevenue   float64          `db:"week_revenue"`
	MonthBookings int64            `db:"month_bookings"`
	MonthRevenue  float64          `db:"month_revenue"`
	StatusCounts  map[string]int64 `db:"-"`
}

func NewPostgresStorage(ctx context.Context, cfg Config, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	reportsDir := cfg.ReportsDir
	if reportsDir == "" {
		reportsDir = "reports"
	}

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:         db,
		redis:      redisClient,
		logger:     logger,
		reportsDir: reportsDir,
	}, nil
}

func (s *PostgresStorage) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// DB exposes the underlying handle for the migrator.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) SaveBooking(ctx context.Context, b Booking) (int64, error) {
	const query = `
        INSERT INTO bookings (
            chat_id, name, email, phone, category, extras,
            pickup_date, dropoff_date, days, base_price, extras_price,
            total, deposit, payment_method, notes, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING id
    `

	var bookingID int64
	err := s.db.QueryRowContext(ctx, query,
		b.ChatID,
		b.Name,
		b.Email,
		b.Phone,
		b.Category,
		b.Extras,
		b.PickupDate,
		b.DropoffDate,
		b.Days,
		b.BasePrice,
		b.ExtrasPrice,
		b.Total,
		b.Deposit,
		b.PaymentMethod,
		b.Notes,
		b.Status,
		b.CreatedAt,
	).Scan(&bookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to save booking: %w", err)
	}

	// Invalidate the statistics cache.
	_ = s.redis.Del(ctx, statsCacheKey)

	return bookingID, nil
}

func (s *PostgresStorage) GetBookingByID(ctx context.Context, bookingID int64) (*Booking, error) {
	const query = `SELECT * FROM bookings WHERE id = $1`

	var b Booking
	err := s.db.GetContext(ctx, &b, query, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d not found: %w", bookingID, err)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (s *PostgresStorage) ListRecentBookings(ctx context.Context, limit int) ([]Booking, error) {
	const query = `SELECT * FROM bookings ORDER BY created_at DESC LIMIT $1`

	var bookings []Booking
	if err := s.db.SelectContext(ctx, &bookings, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *PostgresStorage) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	if !ValidStatuses[status] {
		return fmt.Errorf("invalid booking status: %s", status)
	}

	const query = `UPDATE bookings SET status = $2 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, bookingID, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("booking %d not found", bookingID)
	}

	_ = s.redis.Del(ctx, statsCacheKey)
	return nil
}

func (s *PostgresStorage) GetBookingStatistics(ctx context.Context) (*BookingStatistics, error) {
	// Try the cache first.
	if cached, err := s.redis.Get(ctx, statsCacheKey); err == nil {
		var stats BookingStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	const query = `
        SELECT
            COUNT(*) AS total_bookings,
            COALESCE(SUM(total), 0) AS total_revenue,
            COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())) AS today_bookings,
            COALESCE(SUM(total) FILTER (WHERE created_at >= date_trunc('day', now())), 0) AS today_revenue,
            COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days') AS week_bookings,
            COALESCE(SUM(total) FILTER (WHERE created_at >= now() - interval '7 days'), 0) AS week_revenue,
            COUNT(*) FILTER (WHERE created_at >= now() - interval '30 days') AS month_bookings,
            COALESCE(SUM(total) FILTER (WHERE created_at >= now() - interval '30 days'), 0) AS month_revenue
        FROM bookings
    `

	var stats BookingStatistics
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get booking statistics: %w", err)
	}

	const statusQuery = `SELECT status, COUNT(*) AS count FROM bookings GROUP BY status`
	rows, err := s.db.QueryxContext(ctx, statusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	stats.StatusCounts = make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	if data, err := json.Marshal(stats); err == nil {
		_ = s.redis.Set(ctx, statsCacheKey, data, statsCacheTTL)
	}

	return &stats, nil
}

func (s *PostgresStorage) ExportBookingToExcel(ctx context.Context, b Booking) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Booking")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	pairs := [][2]any{
		{"Booking ID", b.ID},
		{"Created At", b.CreatedAt.Format("2006-01-02 15:04")},
		{"Name", b.Name},
		{"Email", b.Email},
		{"Phone", b.Phone},
		{"Category", b.Category},
		{"Extras", b.Extras},
		{"Pickup", b.PickupDate.Format("2006-01-02")},
		{"Dropoff", b.DropoffDate.Format("2006-01-02")},
		{"Days", b.Days},
		{"Base Price", b.BasePrice},
		{"Extras Price", b.ExtrasPrice},
		{"Total", b.Total},
		{"Deposit", b.Deposit},
		{"Payment Method", b.PaymentMethod},
		{"Notes", b.Notes},
		{"Status", b.Status},
	}
	for row, pair := range pairs {
		f.SetCellValue("Booking", fmt.Sprintf("A%d", row+1), pair[0])
		f.SetCellValue("Booking", fmt.Sprintf("B%d", row+1), pair[1])
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle("Booking", "A1", fmt.Sprintf("A%d", len(pairs)), style)

	f.SetActiveSheet(index)

	filename := fmt.Sprintf("booking_%d_%s.xlsx", b.ID, b.CreatedAt.Format("20060102_1504"))
	path := filepath.Join(s.reportsDir, filename)

	if err := os.MkdirAll(s.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return path, nil
}

func (s *PostgresStorage) ExportAllBookingsToExcel(ctx context.Context, filename string) (string, error) {
	const query = `SELECT * FROM bookings ORDER BY created_at DESC`
	var bookings []Booking
	if err := s.db.SelectContext(ctx, &bookings, query); err != nil {
		return "", fmt.Errorf("failed to fetch bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Bookings")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Chat ID", "Name", "Email", "Phone", "Category", "Extras",
		"Pickup", "Dropoff", "Days", "Base Price", "Extras Price",
		"Total", "Deposit", "Payment Method", "Notes", "Status", "Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Bookings", cell, header)
	}

	for row, b := range bookings {
		data := []any{
			b.ID,
			b.ChatID,
			b.Name,
			b.Email,
			b.Phone,
			b.Category,
			b.Extras,
			b.PickupDate.Format("2006-01-02"),
			b.DropoffDate.Format("2006-01-02"),
			b.Days,
			b.BasePrice,
			b.ExtrasPrice,
			b.Total,
			b.Deposit,
			b.PaymentMethod,
			b.Notes,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Bookings", cell, value)
		}
	}

	f.SetActiveSheet(index)

	if err := os.MkdirAll(s.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(s.reportsDir, filename+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return path, nil
}
