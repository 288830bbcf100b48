// Package repository 数据库无关的业务逻辑存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hamutea-admin/internal/shared/storage"
	"hamutea-admin/internal/shared/storage/dbutil"
	"hamutea-admin/pkg/logging"
)

// Store 通用存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
	log     *logging.Logger
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{db: db, dialect: dialect, log: log}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// observe 记录失败的查询，并把底层错误翻译为领域错误
func (s *Store) observe(ctx context.Context, op, table string, start time.Time, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if s.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", op, table, storage.ErrDuplicate)
	}
	s.log.WithContext(ctx).DBQueryLog(op, table, time.Since(start), err)
	return fmt.Errorf("%s %s: %w", op, table, err)
}

// insertReturningID 执行 INSERT 并返回自增主键
// query 不含 RETURNING 子句，由方言决定回填方式
func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dialect.SupportsReturning() {
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// execAffectingOne 执行写语句，影响行数为 0 时返回 ErrNotFound
func (s *Store) execAffectingOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// now 统一的时间戳来源（UTC，秒以下截断到微秒，兼容各数据库精度）
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
