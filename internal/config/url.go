package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// PostgresURL 构建 PostgreSQL 连接字符串，用户名和密码按 URL 规则转义
func (db DatabaseConfig) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:   "/" + db.Name,
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String()
}

// SQLiteDSN 构建 SQLite 连接字符串
func (db DatabaseConfig) SQLiteDSN() string {
	if db.Path == ":memory:" {
		return db.Path
	}
	return fmt.Sprintf("file:%s?cache=shared&mode=rwc", db.Path)
}

// describe 返回数据库摘要（隐藏密码）
func (db DatabaseConfig) describe() string {
	switch db.Driver {
	case "sqlite", "sqlite3":
		return db.SQLiteDSN()
	case "mysql", "mariadb":
		return fmt.Sprintf("mysql://%s:***@%s/%s", db.User, net.JoinHostPort(db.Host, strconv.Itoa(db.Port)), db.Name)
	default:
		return maskPassword(db.PostgresURL())
	}
}

var passwordPattern = regexp.MustCompile(`(://[^:/]+:)([^@]+)(@)`)

// maskPassword 隐藏密码
func maskPassword(dsn string) string {
	return passwordPattern.ReplaceAllString(dsn, "${1}***${3}")
}

// parseEnv 解析环境字符串
func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

// firstEnv 返回第一个非空的环境变量值（NODE_ENV 与 APP_ENV 兼容）
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// String 返回配置摘要（隐藏密码和密钥）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %s, Driver: %s, DB: %s, Upload: %s}",
		c.Env, c.Server.Port, c.Database.Driver, c.Database.describe(), c.Upload.Backend)
}
