// Package legacy forwards committed bookings to the spa's previous CRM,
// which still reads from its own Postgres database. The forward is best
// effort; the sheet remains the system of record.
package legacy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lanxiangspa/booking-server/pkg/db"
)

// DB holds the connection pool to the legacy CRM database
type DB struct {
	pool *pgxpool.Pool
}

// NewDB connects to the legacy CRM database
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping legacy database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (d *DB) Close() {
	d.pool.Close()
}

// ForwardBooking mirrors one committed booking into the legacy bookings
// table. Re-forwarding the same booking is a no-op.
func (d *DB) ForwardBooking(ctx context.Context, booking *db.Booking) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO legacy_bookings
			(booking_id, full_name, phone, staff, service_name, service_duration,
			 booking_date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (booking_id) DO NOTHING
	`, booking.ID, booking.FullName, booking.Phone, booking.Staff,
		booking.ServiceName, booking.ServiceDuration, booking.BookingDate,
		booking.StartTime, booking.EndTime, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert legacy booking: %w", err)
	}

	return nil
}
