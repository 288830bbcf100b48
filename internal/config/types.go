// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/容器注入）
//  2. YAML 配置文件（{env}.yaml 覆盖 common.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只从环境变量读取（YAML 中不存储任何密码）。
//
// 环境（NODE_ENV 或 APP_ENV）：
//   - 开发: development → configs/development.yaml
//   - 测试: test → configs/test.yaml
//   - 生产: production → configs/production.yaml 或 /etc/hamutea-admin/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "development"
)

// 存储后端
const (
	UploadBackendLocal = "local"
	UploadBackendMinIO = "minio"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Upload   UploadConfig   `yaml:"upload"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            string        `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"` // 仅生产环境生效，开发环境放行任意来源
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // "postgres", "mysql" 或 "sqlite"
	Path        string `yaml:"path"`   // SQLite 文件路径
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"-"` // 只从 DB_PASSWORD 读取
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"sslmode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// AuthConfig 认证配置
// 注意：JWTSecret/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret     string        `yaml:"-"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AdminEmail    string        `yaml:"admin_email"`
	AdminPassword string        `yaml:"-"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	Backend  string `yaml:"backend"` // local | minio
	Dir      string `yaml:"dir"`     // local 后端根目录
	MaxBytes int64  `yaml:"max_bytes"`
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"` // 例如 localhost:9000
	AccessKey string `yaml:"-"`        // 只从 MINIO_ACCESS_KEY 读取
	SecretKey string `yaml:"-"`        // 只从 MINIO_SECRET_KEY 读取
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env      Environment
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Upload   UploadConfig
	MinIO    MinIOConfig
	Log      LogConfig

	// JWTSecretGenerated 为 true 表示未配置 JWT_SECRET，使用了进程级随机密钥
	JWTSecretGenerated bool
	// ConfigFilePath 实际加载的 {env}.yaml 路径，未找到时为空
	ConfigFilePath string
}
