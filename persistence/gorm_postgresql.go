// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db       *gorm.DB
	stopOnce sync.Once
	stopChan chan struct{}
}

// StoreEntry is one key path and its jsonb value.
type StoreEntry struct {
	ID        uint                   `gorm:"primaryKey"`
	Path      string                 `gorm:"uniqueIndex;size:512;not null"`
	Parent    string                 `gorm:"index:idx_entry_parent;size:512;not null"`
	ChildKey  string                 `gorm:"size:255;not null"`
	Value     map[string]interface{} `gorm:"serializer:json;type:jsonb"`
	CreatedAt time.Time              `gorm:"index:idx_entry_parent"`
	UpdatedAt time.Time
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&StoreEntry{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db, stopChan: make(chan struct{})}, nil
}

func (g *GormPostgreSQL) Get(ctx context.Context, path string) (map[string]interface{}, error) {
	var entry StoreEntry
	err := g.db.WithContext(ctx).Where("path = ?", path).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (g *GormPostgreSQL) Set(ctx context.Context, path string, value interface{}) error {
	obj, err := normalize(value)
	if err != nil {
		return err
	}

	parent, key := splitPath(path)

	var entry StoreEntry
	result := g.db.WithContext(ctx).Where("path = ?", path).First(&entry)

	if result.Error == gorm.ErrRecordNotFound {
		entry = StoreEntry{
			Path:     path,
			Parent:   parent,
			ChildKey: key,
			Value:    obj,
		}
		return g.db.WithContext(ctx).Create(&entry).Error
	} else if result.Error != nil {
		return result.Error
	}

	entry.Value = obj
	return g.db.WithContext(ctx).Save(&entry).Error
}

func (g *GormPostgreSQL) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	obj, err := normalize(fields)
	if err != nil {
		return err
	}

	var entry StoreEntry
	result := g.db.WithContext(ctx).Where("path = ?", path).First(&entry)

	if result.Error == gorm.ErrRecordNotFound {
		return g.Set(ctx, path, obj)
	} else if result.Error != nil {
		return result.Error
	}

	if entry.Value == nil {
		entry.Value = make(map[string]interface{})
	}
	for k, v := range obj {
		entry.Value[k] = v
	}
	return g.db.WithContext(ctx).Save(&entry).Error
}

func (g *GormPostgreSQL) Delete(ctx context.Context, path string) error {
	return g.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", path, path+"/%").
		Delete(&StoreEntry{}).Error
}

func (g *GormPostgreSQL) Push(ctx context.Context, path string, value interface{}) (string, error) {
	key := uuid.New().String()
	if err := g.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (g *GormPostgreSQL) SubscribeChildAdded(ctx context.Context, path string, limit int, fn ChildAddedFunc) (Unsubscribe, error) {
	var recent []StoreEntry
	err := g.db.WithContext(ctx).
		Where("parent = ?", path).
		Order("created_at DESC").Limit(limit).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	var lastSeen time.Time
	for i := len(recent) - 1; i >= 0; i-- {
		fn(recent[i].ChildKey, recent[i].Value)
		if recent[i].CreatedAt.After(lastSeen) {
			lastSeen = recent[i].CreatedAt
		}
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		since := lastSeen
		for {
			select {
			case <-stop:
				return
			case <-g.stopChan:
				return
			case <-ticker.C:
				var fresh []StoreEntry
				err := g.db.
					Where("parent = ? AND created_at > ?", path, since).
					Order("created_at ASC").
					Find(&fresh).Error
				if err != nil {
					continue
				}
				for _, e := range fresh {
					fn(e.ChildKey, e.Value)
					since = e.CreatedAt
				}
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }, nil
}

func (g *GormPostgreSQL) Close() error {
	g.stopOnce.Do(func() { close(g.stopChan) })
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
