// Package infra 基础设施聚合层
//
// 根据配置初始化持久化存储和对象存储：
//   - Storage：postgres / mysql / sqlite 三选一
//   - Objects：本地文件系统或 MinIO
package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hamutea-admin/internal/config"
	"hamutea-admin/internal/shared/objstore"
	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/internal/shared/storage/dbutil"
	mysqldriver "hamutea-admin/internal/shared/storage/driver/mysql"
	pgdriver "hamutea-admin/internal/shared/storage/driver/postgres"
	sqlitedriver "hamutea-admin/internal/shared/storage/driver/sqlite"
	"hamutea-admin/internal/shared/storage/repository"
	"hamutea-admin/pkg/logging"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 持久化存储
	Storage storage.PersistentStore

	// Objects 上传文件存储
	Objects objstore.Store
}

// New 按配置初始化全部基础设施，失败时释放已打开的连接
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Infrastructure, error) {
	store, err := OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	objects, err := OpenObjectStore(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Infrastructure{Storage: store, Objects: objects}, nil
}

// OpenStore 打开数据库并按需执行建表
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*repository.Store, error) {
	driverType, err := dbutil.ParseDriverType(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var (
		db      *sql.DB
		dialect dbutil.Dialect
	)
	switch driverType {
	case dbutil.DriverPostgres:
		db, err = pgdriver.Open(cfg.PostgresURL())
		dialect = pgdriver.NewDialect()
	case dbutil.DriverMySQL:
		db, err = mysqldriver.Open(mysqldriver.BuildDSN(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name))
		dialect = mysqldriver.NewDialect()
	case dbutil.DriverSQLite:
		db, err = sqlitedriver.Open(cfg.SQLiteDSN())
		dialect = sqlitedriver.NewDialect()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := dialect.AutoMigrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema migrated", "driver", string(driverType))
	}
	return repository.NewStore(db, dialect, log.Named("store")), nil
}

// OpenObjectStore 按 UPLOAD_BACKEND 创建对象存储
func OpenObjectStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (objstore.Store, error) {
	switch cfg.Upload.Backend {
	case config.UploadBackendLocal, "":
		return objstore.NewLocalStore(cfg.Upload.Dir)
	case config.UploadBackendMinIO:
		s, err := objstore.NewMinIOStore(cfg.MinIO, log)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported upload backend %q", cfg.Upload.Backend)
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var errs []error
	if i.Storage != nil {
		errs = append(errs, i.Storage.Close())
	}
	return errors.Join(errs...)
}
