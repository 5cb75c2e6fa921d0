// Package postgres stores submitted assessments in PostgreSQL through gorm.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/impactwon/checkin/internal/adapters/repository"
	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/pkg/metrics"
)

// assessment is the table row.
type assessment struct {
	ID                   string  `gorm:"primaryKey;size:64"`
	FirstName            string  `gorm:"size:255;not null"`
	Surname              string  `gorm:"size:255;not null"`
	Email                string  `gorm:"size:255;not null;index"`
	Mobile               string  `gorm:"size:64"`
	BrandAdvocate        float64 `gorm:"not null;default:0"`
	Investigator         float64 `gorm:"not null;default:0"`
	TeamPlayer           float64 `gorm:"not null;default:0"`
	LeadershipEthics     float64 `gorm:"not null;default:0"`
	BusinessAcumen       float64 `gorm:"not null;default:0"`
	ProductsServices     float64 `gorm:"not null;default:0"`
	SalesPlanningSelling float64 `gorm:"not null;default:0"`
	ExperienceRating     int     `gorm:"not null"`
	Responses            datatypes.JSON
	CreatedAt            time.Time `gorm:"index"`
}

func (assessment) TableName() string { return "assessments" }

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// Open connects to dsn and migrates the assessments table.
func Open(ctx context.Context, dsn string) (*Store, error) {
	return OpenDialector(ctx, postgres.Open(dsn))
}

// OpenDialector is Open for an already built gorm dialector.
func OpenDialector(ctx context.Context, d gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&assessment{}); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert adds a row. A conflicting id reports repository.ErrDuplicate.
func (s *Store) Insert(ctx context.Context, rec model.Record) error {
	defer observe("insert", time.Now())

	if rec.ID == "" {
		return repository.ErrInvalidID
	}
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		metrics.RecordErrorByComponent("repository", "insert_failed")
		return fmt.Errorf("insert assessment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.RecordErrorByComponent("repository", "duplicate")
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, rec.ID)
	}
	return nil
}

// Get returns the row with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Record, error) {
	defer observe("get", time.Now())

	var row assessment
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordErrorByComponent("repository", "not_found")
			return model.Record{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
		}
		return model.Record{}, fmt.Errorf("get assessment: %w", err)
	}
	return fromRow(row)
}

// List returns a page of rows, oldest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]model.Record, error) {
	defer observe("list", time.Now())

	if err := repository.CheckPage(limit, offset); err != nil {
		return nil, err
	}
	var rows []assessment
	err := s.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&assessment{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(rec model.Record) (assessment, error) {
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return assessment{}, fmt.Errorf("encode responses: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return assessment{
		ID:                   rec.ID,
		FirstName:            rec.FirstName,
		Surname:              rec.Surname,
		Email:                rec.Email,
		Mobile:               rec.Mobile,
		BrandAdvocate:        rec.BrandAdvocate,
		Investigator:         rec.Investigator,
		TeamPlayer:           rec.TeamPlayer,
		LeadershipEthics:     rec.LeadershipEthics,
		BusinessAcumen:       rec.BusinessAcumen,
		ProductsServices:     rec.ProductsServices,
		SalesPlanningSelling: rec.SalesPlanningSelling,
		ExperienceRating:     rec.ExperienceRating,
		Responses:            datatypes.JSON(responses),
		CreatedAt:            created.UTC(),
	}, nil
}

func fromRow(row assessment) (model.Record, error) {
	var responses []scoring.Response
	if len(row.Responses) > 0 {
		if err := json.Unmarshal(row.Responses, &responses); err != nil {
			return model.Record{}, fmt.Errorf("decode responses of %s: %w", row.ID, err)
		}
	}
	return model.Record{
		ID:                   row.ID,
		FirstName:            row.FirstName,
		Surname:              row.Surname,
		Email:                row.Email,
		Mobile:               row.Mobile,
		BrandAdvocate:        row.BrandAdvocate,
		Investigator:         row.Investigator,
		TeamPlayer:           row.TeamPlayer,
		LeadershipEthics:     row.LeadershipEthics,
		BusinessAcumen:       row.BusinessAcumen,
		ProductsServices:     row.ProductsServices,
		SalesPlanningSelling: row.SalesPlanningSelling,
		ExperienceRating:     row.ExperienceRating,
		Responses:            responses,
		CreatedAt:            row.CreatedAt,
	}, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
