// Package sqldir implements the account directory on a relational
// database through GORM. SQLite is the single-node default; PostgreSQL is
// available for deployments that already run one.
package sqldir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// firstRID is the first relative identifier handed to created accounts,
// matching where SAM starts non-builtin accounts.
const firstRID = 1000

// DatabaseType defines the supported database backends.
type DatabaseType string

const (
	// DatabaseTypeSQLite uses SQLite (single-node, default).
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres uses PostgreSQL (HA-capable).
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	// Default: $XDG_CONFIG_HOME/muster/directory.db
	Path string
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host         string
	Port         int
	Database     string
	User         string
	Password     string
	SSLMode      string // disable, require, verify-ca, verify-full
	SSLRootCert  string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)

	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	if c.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", c.SSLRootCert)
	}

	return dsn
}

// Config contains database configuration.
type Config struct {
	Type     DatabaseType
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		// Use XDG config home or fallback
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "muster", "directory.db")
	}

	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 25
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 5
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// Store implements directory.Store using GORM. It supports both SQLite
// and PostgreSQL backends via the same codebase.
type Store struct {
	db         *gorm.DB
	machine    string
	machineSID *principal.SID
}

var _ directory.Store = (*Store)(nil)

// New opens (or creates) the directory database for the given machine
// name. It automatically creates the schema via GORM AutoMigrate. On
// first open a machine SID is generated and persisted; a machine rename
// keeps the SID, the way Windows does.
func New(config *Config, machine string) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if machine == "" {
		return nil, fmt.Errorf("machine name is required")
	}

	// Apply defaults if not set
	config.ApplyDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	// Create the appropriate database connection
	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		// Ensure parent directory exists for SQLite
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		// SQLite pragmas for better concurrent access:
		// - journal_mode(WAL): Write-Ahead Logging for concurrent readers/single writer
		// - busy_timeout(5000): Wait up to 5 seconds when database is locked
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	// Configure GORM
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // Suppress GORM logs by default
	}

	// Open database connection
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool for PostgreSQL
	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	// Run auto-migration
	if err := db.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to run database migration: %w", err)
	}

	store := &Store{
		db:      db,
		machine: machine,
	}

	if err := store.initMeta(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize directory metadata: %w", err)
	}

	logger.Debug("directory database opened",
		"type", string(config.Type),
		"machine", machine,
		"machine_sid", store.machineSID.String())

	return store, nil
}

// initMeta loads the machine identity, creating it on first open.
func (s *Store) initMeta(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meta metaModel
		err := tx.First(&meta, "id = ?", metaRowID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.machineSID = principal.NewMachineSID()
			meta = metaModel{
				ID:         metaRowID,
				Machine:    s.machine,
				MachineSID: s.machineSID.String(),
				NextRID:    firstRID,
			}
			return tx.Create(&meta).Error

		case err != nil:
			return err
		}

		sid, err := principal.ParseSID(meta.MachineSID)
		if err != nil {
			return fmt.Errorf("failed to decode stored machine SID: %w", err)
		}
		s.machineSID = sid

		if meta.Machine != s.machine {
			return tx.Model(&metaModel{}).Where("id = ?", metaRowID).
				Update("machine", s.machine).Error
		}
		return nil
	})
}

// MachineName returns the machine name records are qualified with.
func (s *Store) MachineName() string { return s.machine }

// MachineSID returns the store's machine SID.
func (s *Store) MachineSID() *principal.SID { return s.machineSID }

// DB returns the underlying GORM database connection.
// This is useful for advanced queries or testing.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fold(name string) string { return strings.ToLower(name) }

// allocateSID mints the next account SID under the machine SID, inside
// the caller's transaction. The counter row is updated before it is read
// back, so on PostgreSQL the row lock taken by the UPDATE serializes
// concurrent allocations for the rest of the transaction; SQLite
// serializes writing transactions wholesale.
func (s *Store) allocateSID(tx *gorm.DB) (*principal.SID, error) {
	if err := tx.Model(&metaModel{}).Where("id = ?", metaRowID).
		UpdateColumn("next_rid", gorm.Expr("next_rid + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to advance RID counter: %w", err)
	}
	var meta metaModel
	if err := tx.First(&meta, "id = ?", metaRowID).Error; err != nil {
		return nil, fmt.Errorf("failed to read RID counter: %w", err)
	}
	return s.machineSID.WithRID(meta.NextRID - 1), nil
}

// nameTaken reports whether the folded name is already used by a user or
// group. Users and groups share one account namespace.
func nameTaken(tx *gorm.DB, key string) error {
	var n int64
	if err := tx.Model(&userModel{}).Where("name_fold = ?", key).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return directory.ErrDuplicateUser
	}
	if err := tx.Model(&groupModel{}).Where("name_fold = ?", key).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return directory.ErrDuplicateGroup
	}
	return nil
}

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite or PostgreSQL unique constraint errors
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key value violates unique constraint")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the appropriate domain error.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
