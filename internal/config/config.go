package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = "5000"
	defaultTokenTTL        = 24 * time.Hour
	defaultUploadMaxBytes  = 5 << 20
	defaultShutdownTimeout = 10 * time.Second
	defaultCORSOrigin      = "https://hamutea-frontend.vercel.app"
)

// Load 加载配置
//  1. 加载 .env（不覆盖已有环境变量）
//  2. 默认值 → common.yaml → {env}.yaml
//  3. 环境变量覆盖
//  4. Validate 校验并补全
func Load() (*Config, error) {
	loadEnvFiles()

	env := parseEnv(firstEnv("NODE_ENV", "APP_ENV"))

	yamlCfg, path, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:            env,
		Server:         yamlCfg.Server,
		Database:       yamlCfg.Database,
		Auth:           yamlCfg.Auth,
		Upload:         yamlCfg.Upload,
		MinIO:          yamlCfg.MinIO,
		Log:            yamlCfg.Log,
		ConfigFilePath: path,
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultYAMLConfig 代码内置默认值
func defaultYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server: ServerConfig{Port: defaultPort, ShutdownTimeout: defaultShutdownTimeout},
		Database: DatabaseConfig{
			Driver:      "postgres",
			Host:        "localhost",
			Port:        5432,
			User:        "hamutea",
			Name:        "hamutea_admin",
			SSLMode:     "disable",
			Path:        "hamutea.db",
			AutoMigrate: true,
		},
		Auth:   AuthConfig{TokenTTL: defaultTokenTTL},
		Upload: UploadConfig{Backend: UploadBackendLocal, Dir: "uploads", MaxBytes: defaultUploadMaxBytes},
		MinIO:  MinIOConfig{Endpoint: "localhost:9000", Bucket: "hamutea"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
	if env == EnvProduction {
		cfg.Server.CORSOrigins = []string{defaultCORSOrigin}
		cfg.Database.AutoMigrate = false
		cfg.Log.Format = "json"
	}
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml，返回 {env}.yaml 的路径
func loadYAMLConfig(env Environment) (*YAMLConfig, string, error) {
	cfg := defaultYAMLConfig(env)

	if path := findConfigFile(env, "common.yaml"); path != "" {
		if err := unmarshalFile(path, cfg); err != nil {
			return nil, "", err
		}
	}

	path := findConfigFile(env, fmt.Sprintf("%s.yaml", env))
	if path != "" {
		if err := unmarshalFile(path, cfg); err != nil {
			return nil, "", err
		}
	}
	return cfg, path, nil
}

func unmarshalFile(path string, cfg *YAMLConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv 用环境变量覆盖 YAML 配置，凭据只从这里进入
func (c *Config) applyEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	setString(&c.Server.Port, "PORT")
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	collect(setInt(&c.Database.Port, "DB_PORT"))
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.Database.Path, "DB_PATH")
	collect(setBool(&c.Database.AutoMigrate, "DB_AUTO_MIGRATE"))

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		ttl, err := ParseTTL(v)
		if err != nil {
			collect(fmt.Errorf("JWT_EXPIRES_IN: %w", err))
		} else {
			c.Auth.TokenTTL = ttl
		}
	}
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")

	setString(&c.Upload.Backend, "UPLOAD_BACKEND")
	setString(&c.Upload.Dir, "UPLOAD_DIR")
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			collect(fmt.Errorf("UPLOAD_MAX_BYTES: %w", err))
		} else {
			c.Upload.MaxBytes = n
		}
	}

	setString(&c.MinIO.Endpoint, "MINIO_ENDPOINT")
	setString(&c.MinIO.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.MinIO.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.MinIO.Bucket, "MINIO_BUCKET")
	collect(setBool(&c.MinIO.UseSSL, "MINIO_USE_SSL"))

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	return errors.Join(errs...)
}

// Validate 校验配置并补全缺省项
//
// 生产环境必须显式配置 JWT_SECRET；其他环境缺失时生成进程级随机密钥，
// 重启后已签发的令牌全部失效。
func (c *Config) Validate() error {
	var errs []error

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case "postgres", "postgresql", "pgx", "mysql", "mariadb", "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}

	switch c.Upload.Backend {
	case UploadBackendLocal:
		if c.Upload.Dir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty"))
		}
	case UploadBackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.Upload.Backend))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			secret, err := randomSecret()
			if err != nil {
				errs = append(errs, err)
			}
			c.Auth.JWTSecret = secret
			c.JWTSecretGenerated = true
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ParseTTL 解析令牌有效期
// 支持 Go duration（"24h"、"90m"）、天数（"7d"）和纯秒数（"3600"）
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseInt(days, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
