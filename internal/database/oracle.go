package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	log "github.com/sirupsen/logrus"

	"lanehub/internal/schema"
)

var (
	// ErrRepositoryUnavailable classifies infrastructure failures the caller may retry.
	ErrRepositoryUnavailable = errors.New("city repository unavailable")
	// ErrCityNotFound means the name/state resolved to no known city.
	ErrCityNotFound = errors.New("city not found")
)

// CityRepository is the only external collaborator of the diversity engine.
type CityRepository interface {
	FindByNameState(ctx context.Context, city, state string) (*schema.City, error)
	FindWithinRadius(ctx context.Context, lat, lon, radiusMiles float64) ([]schema.City, error)
}

// Settings represents the Oracle connection configuration
type OracleSettings struct {
	DBUser      *string
	DBPassword  *string
	Host        *string
	Port        *int
	ServiceName *string
}

const (
	// Haversine over the CITIES table, bounding box prefilter keeps the
	// trig off most rows. 3959 is the earth radius in miles.
	radiusQuery = `
SELECT CITY_NAME, STATE_CODE, POSTAL_CODE, LATITUDE, LONGITUDE, MARKET_CODE, MARKET_NAME,
       3959 * ACOS(LEAST(1, COS(:lat * 0.0174533) * COS(LATITUDE * 0.0174533) *
       COS((LONGITUDE - :lon) * 0.0174533) + SIN(:lat * 0.0174533) * SIN(LATITUDE * 0.0174533))) AS DISTANCE_MILES
FROM CITIES
WHERE LATITUDE BETWEEN :lat - (:radius / 69) AND :lat + (:radius / 69)
  AND LONGITUDE BETWEEN :lon - (:radius / 53) AND :lon + (:radius / 53)
  AND 3959 * ACOS(LEAST(1, COS(:lat * 0.0174533) * COS(LATITUDE * 0.0174533) *
      COS((LONGITUDE - :lon) * 0.0174533) + SIN(:lat * 0.0174533) * SIN(LATITUDE * 0.0174533))) <= :radius
ORDER BY DISTANCE_MILES
FETCH FIRST 300 ROWS ONLY`

	nameStateQuery = `
SELECT CITY_NAME, STATE_CODE, POSTAL_CODE, LATITUDE, LONGITUDE, MARKET_CODE, MARKET_NAME
FROM CITIES
WHERE UPPER(CITY_NAME) = UPPER(:city) AND STATE_CODE = :state
ORDER BY POPULATION DESC
FETCH FIRST 1 ROWS ONLY`
)

// OracleCityRepository implements the CityRepository interface
type OracleCityRepository struct {
	db          *sql.DB
	radiusStmt  *sql.Stmt
	resolveStmt *sql.Stmt
	concurrency int
	maxRetries  int
}

// NewOracleCityRepository creates a pooled repository over the city reference table.
func NewOracleCityRepository(settings OracleSettings, concurrency, maxRetries int) (*OracleCityRepository, error) {
	//instead of fetching rows one by one, we fetch multiple rows in one network operation
	urlOptions := map[string]string{
		"PREFETCH_ROWS": "500",
	}
	connStr := go_ora.BuildUrl(*settings.Host, *settings.Port, *settings.ServiceName, *settings.DBUser, *settings.DBPassword, urlOptions)
	var db *sql.DB
	var err error

	// Retry mechanism for opening the database connection
	for retry := 0; retry <= maxRetries; retry++ {
		db, err = sql.Open("oracle", connStr)
		if err == nil {
			break
		}
		log.Errorf("attempt %d: error opening database connection: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+1)) // Exponential backoff
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open connection after %d retries: %v", ErrRepositoryUnavailable, maxRetries, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(concurrency)
	db.SetMaxIdleConns(100)
	db.SetConnMaxIdleTime(10 * time.Minute)
	db.SetConnMaxLifetime(20 * time.Minute)

	repo := &OracleCityRepository{
		db:          db,
		concurrency: concurrency,
		maxRetries:  maxRetries,
	}
	//stmt will be bound to a single underlying connection forever. https://pkg.go.dev/database/sql#Stmt
	radiusStmt, err := db.PrepareContext(context.Background(), radiusQuery)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: preparing radius query: %v", ErrRepositoryUnavailable, err)
	}
	resolveStmt, err := db.PrepareContext(context.Background(), nameStateQuery)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: preparing resolve query: %v", ErrRepositoryUnavailable, err)
	}
	repo.radiusStmt = radiusStmt
	repo.resolveStmt = resolveStmt

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for retry := 0; retry <= maxRetries; retry++ {
		err = repo.db.PingContext(ctx)
		if err == nil {
			log.Info("Connected to Oracle city repository pool")
			break
		}
		log.Errorf("attempt %d: failed to connect to Oracle DB: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+2))
		}
	}
	if err != nil {
		repo.db.Close()
		return nil, fmt.Errorf("%w: failed to connect after %d retries: %v", ErrRepositoryUnavailable, maxRetries, err)
	}
	return repo, nil
}

// FindByNameState resolves a city/state to its canonical record, the most
// populated city wins when the name is ambiguous within a state.
func (r *OracleCityRepository) FindByNameState(ctx context.Context, city, state string) (*schema.City, error) {
	rows, err := r.resolveStmt.QueryContext(ctx, sql.Named("city", city), sql.Named("state", state))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Errorf("error closing rows: %v", closeErr)
		}
	}()

	if !rows.Next() {
		return nil, noRowError(rows.Err(), city, state)
	}
	var c schema.City
	if err := rows.Scan(&c.Name, &c.StateCode, &c.PostalCode, &c.Latitude, &c.Longitude, &c.MarketCode, &c.MarketName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return &c, nil
}

// noRowError classifies an empty result set: an iteration error is an
// infrastructure failure the caller may retry, a clean empty set means the
// city is unknown.
func noRowError(iterErr error, city, state string) error {
	if iterErr != nil {
		return fmt.Errorf("%w: %v", ErrRepositoryUnavailable, iterErr)
	}
	return fmt.Errorf("%w: %s, %s", ErrCityNotFound, city, state)
}

// FindWithinRadius returns candidate cities around a coordinate ordered by
// distance, nearest first.
func (r *OracleCityRepository) FindWithinRadius(ctx context.Context, lat, lon, radiusMiles float64) ([]schema.City, error) {
	log.Infof("Started city radius search at %.4f,%.4f within %.0f miles", lat, lon, radiusMiles)
	rows, err := r.radiusStmt.QueryContext(ctx, sql.Named("lat", lat), sql.Named("lon", lon), sql.Named("radius", radiusMiles))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Errorf("error closing rows: %v", closeErr)
		}
	}()

	var cities []schema.City
	for rows.Next() {
		var c schema.City
		var distance float64
		if err := rows.Scan(&c.Name, &c.StateCode, &c.PostalCode, &c.Latitude, &c.Longitude, &c.MarketCode, &c.MarketName, &distance); err != nil {
			log.Errorf("row scan error: %v", err)
			continue
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return cities, nil
}
