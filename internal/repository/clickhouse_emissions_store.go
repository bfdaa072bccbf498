package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	pkgch "EcoTrack/pkg/clickhouse"
	applogger "EcoTrack/pkg/logger"
	xutil "EcoTrack/pkg/util"
)

const (
	profilesTable = "company_profiles"
	readingsTable = "emission_readings"

	insertChunkSize = 2000
)

// CHEmissionsStore implements EmissionsStore backed by ClickHouse.
type CHEmissionsStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHEmissionsStore(ch *pkgch.Client) *CHEmissionsStore {
	return newCHEmissionsStore(ch.DB(), ch.Database())
}

func newCHEmissionsStore(db *sql.DB, database string) *CHEmissionsStore {
	if database == "" {
		database = "ecotrack"
	}
	return &CHEmissionsStore{db: db, database: database}
}

// SetLogger injects a structured logger.
func (s *CHEmissionsStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the idempotent DDL for the store's tables.
func Schema(database string) []string {
	if database == "" {
		database = "ecotrack"
	}
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    company_id        String,
    company_name      String,
    sector            LowCardinality(String),
    total_emissions   Float64,
    scope1            Float64,
    scope2            Float64,
    scope3            Float64,
    reduction_target  Float64,
    current_reduction Float64,
    employees         UInt32,
    revenue           Float64,
    csrd              Bool,
    tcfd              Bool,
    gdpr              Bool,
    last_updated      DateTime
) ENGINE = ReplacingMergeTree(last_updated)
ORDER BY company_id`, database, profilesTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    company_id String,
    t          DateTime,
    emissions  Float64,
    scope      UInt8,
    source     LowCardinality(String)
) ENGINE = MergeTree
PARTITION BY toYYYYMM(t)
ORDER BY (company_id, t)`, database, readingsTable),
	}
}

func (s *CHEmissionsStore) table(name string) string { return s.database + "." + name }

func (s *CHEmissionsStore) GetProfile(ctx context.Context, companyID string) (models.CompanyProfile, error) {
	q := fmt.Sprintf(`
        SELECT company_id, company_name, sector, total_emissions, scope1, scope2, scope3,
               reduction_target, current_reduction, employees, revenue, csrd, tcfd, gdpr, last_updated
        FROM %s FINAL
        WHERE company_id = ?
        LIMIT 1
    `, s.table(profilesTable))

	var (
		p         models.CompanyProfile
		sector    string
		employees uint32
	)
	err := s.db.QueryRowContext(ctx, q, companyID).Scan(
		&p.CompanyID, &p.CompanyName, &sector, &p.TotalEmissions, &p.Scope1, &p.Scope2, &p.Scope3,
		&p.ReductionTarget, &p.CurrentReduction, &employees, &p.Revenue,
		&p.Compliance.CSRD, &p.Compliance.TCFD, &p.Compliance.GDPR, &p.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompanyProfile{}, domrepo.ErrNotFound
	}
	if err != nil {
		s.logError("clickhouse get_profile error", err, applogger.String("company_id", companyID))
		return models.CompanyProfile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Sector = models.Sector(sector)
	p.Employees = int(employees)
	p.LastUpdated = p.LastUpdated.UTC()
	return p, nil
}

func (s *CHEmissionsStore) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT company_id FROM %s ORDER BY company_id", s.table(profilesTable))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("clickhouse list_companies error", err)
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, 64)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

func (s *CHEmissionsStore) GetMonthlySamples(ctx context.Context, companyID string, months int, until time.Time) ([]models.Sample, error) {
	start := time.Now()
	from, to := monthWindow(until, months)
	q := fmt.Sprintf(`
        SELECT toStartOfMonth(t) AS month, sum(emissions) AS total
        FROM %s
        WHERE company_id = ? AND t >= ? AND t < ?
        GROUP BY month
        ORDER BY month ASC
    `, s.table(readingsTable))

	rows, err := s.db.QueryContext(ctx, q, companyID, from, to)
	if err != nil {
		s.logError("clickhouse monthly_samples query error", err, applogger.String("company_id", companyID))
		return nil, fmt.Errorf("get monthly samples: %w", err)
	}
	defer rows.Close()

	out := make([]models.Sample, 0, months)
	for rows.Next() {
		var smp models.Sample
		if err := rows.Scan(&smp.Timestamp, &smp.Emissions); err != nil {
			s.logError("clickhouse monthly_samples scan error", err, applogger.String("company_id", companyID))
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		smp.Timestamp = xutil.MonthStart(smp.Timestamp)
		out = append(out, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse monthly_samples ok",
			applogger.String("company_id", companyID),
			applogger.Int("months", months),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHEmissionsStore) SectorAverages(ctx context.Context) ([]models.SectorAverage, error) {
	q := fmt.Sprintf(`
        SELECT sector, avg(total_emissions), avg(current_reduction), count()
        FROM %s FINAL
        GROUP BY sector
        ORDER BY sector ASC
    `, s.table(profilesTable))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("clickhouse sector_averages error", err)
		return nil, fmt.Errorf("sector averages: %w", err)
	}
	defer rows.Close()

	out := make([]models.SectorAverage, 0, 8)
	for rows.Next() {
		var (
			a      models.SectorAverage
			sector string
		)
		if err := rows.Scan(&sector, &a.AvgEmissions, &a.AvgReduction, &a.Count); err != nil {
			return nil, fmt.Errorf("scan sector average: %w", err)
		}
		a.Sector = models.Sector(sector)
		out = append(out, a)
	}
	return out, rows.Err()
}

// StoreReadings batch-inserts readings, chunked to keep each block bounded.
func (s *CHEmissionsStore) StoreReadings(ctx context.Context, readings []models.Reading) error {
	rows := validReadings(readings)
	if len(rows) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (company_id, t, emissions, scope, source)", s.table(readingsTable))

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.insertChunk(ctx, q, rows[start:end]); err != nil {
			s.logError("clickhouse store_readings error", err, applogger.Int("rows", end-start))
			return err
		}
	}
	return nil
}

func (s *CHEmissionsStore) insertChunk(ctx context.Context, q string, rows []models.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.CompanyID, r.Timestamp.UTC(), r.Emissions, uint8(r.Scope), sourceOrUnknown(r.Source)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append reading: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpsertProfile writes a profile; the latest last_updated wins on merge.
func (s *CHEmissionsStore) UpsertProfile(ctx context.Context, p models.CompanyProfile) error {
	if p.LastUpdated.IsZero() {
		p.LastUpdated = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO %s (company_id, company_name, sector, total_emissions, scope1, scope2, scope3,
        reduction_target, current_reduction, employees, revenue, csrd, tcfd, gdpr, last_updated)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table(profilesTable))
	_, err := s.db.ExecContext(ctx, q,
		p.CompanyID, p.CompanyName, string(p.Sector), p.TotalEmissions, p.Scope1, p.Scope2, p.Scope3,
		p.ReductionTarget, p.CurrentReduction, uint32(p.Employees), p.Revenue,
		p.Compliance.CSRD, p.Compliance.TCFD, p.Compliance.GDPR, p.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *CHEmissionsStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHEmissionsStore) logError(msg string, err error, fields ...applogger.Field) {
	if s.l == nil {
		return
	}
	s.l.Error(msg, append(fields, applogger.Error(err))...)
}

// monthWindow returns [from, to) covering the `months` calendar months up to
// and including the month of until.
func monthWindow(until time.Time, months int) (time.Time, time.Time) {
	if months < 1 {
		months = 1
	}
	to := xutil.MonthStart(until).AddDate(0, 1, 0)
	return to.AddDate(0, -months, 0), to
}

func validReadings(in []models.Reading) []models.Reading {
	out := make([]models.Reading, 0, len(in))
	for _, r := range in {
		if r.CompanyID == "" || r.Timestamp.IsZero() || r.Emissions < 0 {
			continue
		}
		if r.Scope < 0 || r.Scope > 3 {
			r.Scope = 0
		}
		out = append(out, r)
	}
	return out
}

func sourceOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

var _ domrepo.EmissionsStore = (*CHEmissionsStore)(nil)
