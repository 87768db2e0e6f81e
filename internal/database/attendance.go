package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/munscan/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "munscan.db"

// storedTimeFormat has a fixed width so timestamps sort lexically.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// AttendanceDB stores check-ins.
type AttendanceDB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures AttendanceDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if they
	// don't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the report command can read
	// while the server writes.
	EnableWAL bool

	// Now replaces time.Now for check-in timestamps.
	Now func() time.Time
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the attendance database in dbDir.
func Open(dbDir string, opts Options) (*AttendanceDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AttendanceDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}
	if opts.Now != nil {
		adb.now = opts.Now
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *AttendanceDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AttendanceDB) Close() error {
	return adb.db.Close()
}

func (adb *AttendanceDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance (
		delegate_id TEXT PRIMARY KEY,
		scanned_by TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_timestamp ON attendance(timestamp);
	`
	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// MarkAttendance records that id was checked in by scannedBy. The first
// check-in of a delegate wins: a repeat returns the stored record with
// created set to false.
func (adb *AttendanceDB) MarkAttendance(ctx context.Context, id model.DelegateID, scannedBy string) (model.AttendanceRecord, bool, error) {
	if id.IsEmpty() {
		return model.AttendanceRecord{}, false, ErrEmptyDelegateID
	}
	scannedBy = strings.TrimSpace(scannedBy)
	if scannedBy == "" {
		return model.AttendanceRecord{}, false, ErrEmptyScanner
	}

	result, err := adb.db.ExecContext(ctx, `
	INSERT INTO attendance (delegate_id, scanned_by, timestamp)
	VALUES (?, ?, ?)
	ON CONFLICT(delegate_id) DO NOTHING
	`, id.String(), scannedBy, adb.now().UTC().Format(storedTimeFormat))
	if err != nil {
		return model.AttendanceRecord{}, false, fmt.Errorf("failed to mark attendance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return model.AttendanceRecord{}, false, fmt.Errorf("failed to mark attendance: %w", err)
	}

	rec, ok, err := adb.Get(ctx, id)
	if err != nil {
		return model.AttendanceRecord{}, false, err
	}
	if !ok {
		return model.AttendanceRecord{}, false, fmt.Errorf("attendance of %s vanished after insert", id)
	}
	return rec, n > 0, nil
}

// Get returns the attendance record of id. ok is false when the delegate
// has not been checked in.
func (adb *AttendanceDB) Get(ctx context.Context, id model.DelegateID) (rec model.AttendanceRecord, ok bool, err error) {
	var delegateID, timestamp string
	err = adb.db.QueryRowContext(ctx,
		`SELECT delegate_id, scanned_by, timestamp FROM attendance WHERE delegate_id = ?`,
		id.String(),
	).Scan(&delegateID, &rec.ScannedBy, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AttendanceRecord{}, false, nil
	}
	if err != nil {
		return model.AttendanceRecord{}, false, fmt.Errorf("failed to get attendance: %w", err)
	}
	rec.DelegateID = model.DelegateID(delegateID)
	rec.Timestamp = parseTimestamp(timestamp)
	return rec, true, nil
}

// IsPresent reports whether id has been checked in.
func (adb *AttendanceDB) IsPresent(ctx context.Context, id model.DelegateID) (bool, error) {
	_, ok, err := adb.Get(ctx, id)
	return ok, err
}

// Remove deletes the attendance record of id. It reports whether a record
// existed.
func (adb *AttendanceDB) Remove(ctx context.Context, id model.DelegateID) (bool, error) {
	result, err := adb.db.ExecContext(ctx, `DELETE FROM attendance WHERE delegate_id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to remove attendance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove attendance: %w", err)
	}
	return n > 0, nil
}

// Clear deletes every attendance record and returns how many were removed.
func (adb *AttendanceDB) Clear(ctx context.Context) (int64, error) {
	result, err := adb.db.ExecContext(ctx, `DELETE FROM attendance`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear attendance: %w", err)
	}
	return result.RowsAffected()
}

// Records returns every attendance record ordered by check-in time.
func (adb *AttendanceDB) Records(ctx context.Context) ([]model.AttendanceRecord, error) {
	rows, err := adb.db.QueryContext(ctx,
		`SELECT delegate_id, scanned_by, timestamp FROM attendance ORDER BY timestamp, delegate_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		var rec model.AttendanceRecord
		var delegateID, timestamp string
		if err := rows.Scan(&delegateID, &rec.ScannedBy, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		rec.DelegateID = model.DelegateID(delegateID)
		rec.Timestamp = parseTimestamp(timestamp)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}
	return records, nil
}

// Summary aggregates the attendance log.
type Summary struct {
	TotalScanned       int                      `json:"total_scanned"`
	Records            []model.AttendanceRecord `json:"records"`
	ScannedBy          map[string]int           `json:"scanned_by"`
	PresentDelegateIDs []model.DelegateID       `json:"present_delegate_ids"`
}

// Summary returns the attendance totals, records ordered by time and
// per-station counts.
func (adb *AttendanceDB) Summary(ctx context.Context) (Summary, error) {
	records, err := adb.Records(ctx)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		TotalScanned:       len(records),
		Records:            records,
		ScannedBy:          make(map[string]int),
		PresentDelegateIDs: make([]model.DelegateID, 0, len(records)),
	}
	for _, rec := range records {
		s.ScannedBy[rec.ScannedBy]++
		s.PresentDelegateIDs = append(s.PresentDelegateIDs, rec.DelegateID)
	}
	return s, nil
}

// timestampFormats are tried in order when reading stored timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
