package sqlite

import (
	"time"
)

// ─── Coupons ────────────────────────────────────────────────────────────────

// RedeemCoupon records a coupon code as redeemed.
// Returns false if already redeemed (idempotent).
func (d *DB) RedeemCoupon(code string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO redeemed_coupons (code, redeemed_at) VALUES (?, ?)`,
		code, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly redeemed
}

// IsCouponRedeemed checks whether a coupon code has been redeemed.
func (d *DB) IsCouponRedeemed(code string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM redeemed_coupons WHERE code = ?`, code).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListRedeemedCoupons returns all redeemed coupon codes.
func (d *DB) ListRedeemedCoupons() ([]string, error) {
	rows, err := d.db.Query(`SELECT code FROM redeemed_coupons ORDER BY redeemed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ─── Habit Log ──────────────────────────────────────────────────────────────

// MarkHabitLogged records a habit tag for a calendar day ("YYYY-MM-DD").
// Returns false if the tag was already logged that day.
func (d *DB) MarkHabitLogged(tag, day string) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO habit_log (tag, day) VALUES (?, ?)`, tag, day,
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// ─── Scan Log ───────────────────────────────────────────────────────────────

// RecordScan logs a product barcode scan.
func (d *DB) RecordScan(barcode string, at time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO scan_log (barcode, scanned_at) VALUES (?, ?)`, barcode, at.Unix(),
	)
	return err
}

// ScansSince counts all scans at or after the given time.
func (d *DB) ScansSince(since time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM scan_log WHERE scanned_at >= ?`, since.Unix(),
	).Scan(&count)
	return count, err
}

// LastScanOf returns the most recent scan time for a barcode, or the zero
// time if never scanned.
func (d *DB) LastScanOf(barcode string) (time.Time, error) {
	var ts int64
	err := d.db.QueryRow(
		`SELECT COALESCE(MAX(scanned_at), 0) FROM scan_log WHERE barcode = ?`, barcode,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts, 0), nil
}
