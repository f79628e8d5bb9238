package mysql

import (
	"context"
	"fmt"
	"sync"
	"time"

	"order-timeline/internal/config"
	"order-timeline/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Handle is the process-wide database handle. The connection is opened on
// first use and shared by every request afterwards; Close releases it at
// shutdown. A failed open is not cached, the next caller tries again.
type Handle struct {
	open func() (*gorm.DB, error)

	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

func NewHandle(cfg config.MySQLConfig) *Handle {
	return &Handle{open: func() (*gorm.DB, error) { return Open(cfg) }}
}

// NewHandleFromDB wraps an already opened connection.
func NewHandleFromDB(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

func (h *Handle) DB(ctx context.Context) (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("database handle closed")
	}
	if h.db == nil {
		db, err := h.open()
		if err != nil {
			return nil, fmt.Errorf("db: connect: %w", err)
		}
		h.db = db
	}
	return h.db.WithContext(ctx), nil
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	h.db = nil
	return sqlDB.Close()
}

func Open(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(&domain.Order{}, &domain.Comment{}, &domain.EmailTemplate{}); err != nil {
		return nil, err
	}

	return db, nil
}
