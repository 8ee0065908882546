// Package registry is the SQL-backed entity store and its attribute
// fetcher.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dev-mohitbeniwal/themis/db"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
)

// ID is the fetcher id the registry is configured under.
const ID = "registry"

type Config struct {
	SQLDatabaseURL  string `mapstructure:"sql_database_url" validate:"required"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	Tracing         bool   `mapstructure:"tracing"`
}

func DefaultConfig() *Config {
	return &Config{MaxOpenConns: 10, MaxIdleConns: 5}
}

// Registration wires the registry into a fetcher.Factory.
func Registration() fetcher.Registration {
	return fetcher.Define(DefaultConfig, build, func(f fetcher.Fetcher) fetcher.RouteRegistrar {
		return NewController(f.(*Registry)).RegisterRoutes
	})
}

func build(_ context.Context, cfg *Config) (fetcher.Fetcher, error) {
	gdb, err := db.OpenSQL(cfg.SQLDatabaseURL, db.SQLOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
		Tracing:         cfg.Tracing,
	})
	if err != nil {
		return nil, err
	}
	r, err := New(gdb)
	if err != nil {
		db.CloseSQL(gdb)
		return nil, err
	}
	r.owned = true
	return r, nil
}

// Registry stores entities and their attributes. Every write runs in a
// single transaction.
type Registry struct {
	db    *gorm.DB
	owned bool
}

// New migrates the schema on gdb and returns a registry over it.
func New(gdb *gorm.DB) (*Registry, error) {
	if err := gdb.AutoMigrate(&entityRecord{}, &attributeRecord{}); err != nil {
		return nil, fmt.Errorf("%w: migrate registry: %v", themis_errors.ErrDatabaseOperation, err)
	}
	return &Registry{db: gdb}, nil
}

func (r *Registry) Close() error {
	if r.owned {
		db.CloseSQL(r.db)
	}
	return nil
}

// Register creates an entity. A missing uri is generated.
func (r *Registry) Register(ctx context.Context, in model.EntityCreate) (*model.Entity, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.URI == "" {
		in.URI = uuid.NewString()
	}
	attrs, err := attributeRecords(in.URI, in.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entityRecord{}).Where("uri = ?", in.URI).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", themis_errors.ErrEntityAlreadyRegistered, in.URI)
		}
		record := entityRecord{URI: in.URI, Type: string(in.Type), Attributes: attrs}
		return dbError(tx.Create(&record).Error)
	})
	if err != nil {
		logger.Warn("Entity registration failed", zap.String("uri", in.URI), zap.Error(err))
		return nil, err
	}

	logger.Info("Entity registered", zap.String("uri", in.URI), zap.Int("attributes", len(attrs)))
	return r.Get(ctx, in.URI)
}

// Update replaces the attribute set when override is true, otherwise
// upserts each supplied key.
func (r *Registry) Update(ctx context.Context, uri string, in model.EntityUpdate, override bool) (*model.Entity, error) {
	if in.URI != "" && in.URI != uri {
		return nil, fmt.Errorf("%w: uri %q does not match path %q", themis_errors.ErrSchemaViolation, in.URI, uri)
	}
	if in.Type != "" && !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown entity type %q", themis_errors.ErrSchemaViolation, in.Type)
	}
	attrs, err := attributeRecords(uri, in.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", themis_errors.ErrSchemaViolation, err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record entityRecord
		if err := tx.Where("uri = ?", uri).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", themis_errors.ErrEntityNotFound, uri)
			}
			return dbError(err)
		}
		if in.Type != "" && string(in.Type) != record.Type {
			if err := tx.Model(&record).Update("type", string(in.Type)).Error; err != nil {
				return dbError(err)
			}
		}
		if override {
			if err := tx.Where("entity_uri = ?", uri).Delete(&attributeRecord{}).Error; err != nil {
				return dbError(err)
			}
		}
		if len(attrs) == 0 {
			return nil
		}
		return dbError(tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_uri"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_at"}),
		}).Create(&attrs).Error)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Entity updated", zap.String("uri", uri), zap.Bool("override", override))
	return r.Get(ctx, uri)
}

// Delete removes the entity and its attributes.
func (r *Registry) Delete(ctx context.Context, uri string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_uri = ?", uri).Delete(&attributeRecord{}).Error; err != nil {
			return dbError(err)
		}
		result := tx.Where("uri = ?", uri).Delete(&entityRecord{})
		if result.Error != nil {
			return dbError(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", themis_errors.ErrEntityNotFound, uri)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("Entity deleted", zap.String("uri", uri))
	return nil
}

func (r *Registry) Get(ctx context.Context, uri string) (*model.Entity, error) {
	var record entityRecord
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderByKey).
		Where("uri = ?", uri).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", themis_errors.ErrEntityNotFound, uri)
		}
		return nil, dbError(err)
	}
	entity := toEntity(record)
	return &entity, nil
}

// List pages through entities in registration order.
func (r *Registry) List(ctx context.Context, offset, limit int) ([]model.Entity, error) {
	if offset < 0 || limit < 0 {
		return nil, themis_errors.ErrInvalidPagination
	}
	var records []entityRecord
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderByKey).
		Order("registered_at, uri").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, dbError(err)
	}
	entities := make([]model.Entity, 0, len(records))
	for _, record := range records {
		entities = append(entities, toEntity(record))
	}
	return entities, nil
}

func (r *Registry) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entityRecord{}).Count(&count).Error; err != nil {
		return 0, dbError(err)
	}
	return count, nil
}

// FetchAttributes returns the stored attributes of uri, or an empty map.
func (r *Registry) FetchAttributes(ctx context.Context, uri string) (model.Attributes, error) {
	var records []attributeRecord
	if err := r.db.WithContext(ctx).Where("entity_uri = ?", uri).Find(&records).Error; err != nil {
		return nil, dbError(err)
	}
	attrs := make(model.Attributes, len(records))
	for _, record := range records {
		attrs[record.Key] = decodeStored(record.ValueJSON)
	}
	return attrs, nil
}

func orderByKey(tx *gorm.DB) *gorm.DB {
	return tx.Order("key")
}

func dbError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", themis_errors.ErrDatabaseOperation, err)
}
