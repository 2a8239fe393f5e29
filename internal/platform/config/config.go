package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// database.OpenStore 支持的存储后端
const (
	BackendMemory   = "memory"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Health  HealthConfig  `mapstructure:"health"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode            string        `mapstructure:"mode"`
	Address         string        `mapstructure:"address"`
	Cors            CorsConfig    `mapstructure:"cors"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// StorageConfig 选择并配置键值存储后端
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	Sqlite   SqliteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// SqliteConfig 定义了SQLite数据库文件的位置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig 定义了Postgres的连接串
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// BackupConfig 定义了SQLite快照镜像的配置
type BackupConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	SqlitePath string        `mapstructure:"sqlitePath"`
}

// HealthConfig 定义了存储健康检查的配置
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig 定义了日志相关的配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	Color bool   `mapstructure:"color"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdownTimeout", 15*time.Second)

	v.SetDefault("storage.backend", BackendSqlite)
	v.SetDefault("storage.sqlite.path", "quiz.db")
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.keyPrefix", "quiz:")

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", 10*time.Minute)
	v.SetDefault("backup.sqlitePath", "quiz-snapshot.db")

	v.SetDefault("health.interval", 5*time.Second)
	v.SetDefault("health.timeout", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.color", true)
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 找不到配置文件不算错误，默认值与环境变量仍然生效（例如 STORAGE_BACKEND=redis）
func LoadConfig(paths ...string) (*Config, error) {
	// .env 文件是可选的
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 拒绝无法启动服务器的配置
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSqlite, BackendRedis:
	case BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return errors.New("postgres 后端需要配置 storage.postgres.dsn")
		}
	default:
		return fmt.Errorf("未知的存储后端 %q", c.Storage.Backend)
	}
	if c.Backup.Enabled && c.Backup.Interval <= 0 {
		return errors.New("backup.interval 必须为正数")
	}
	return nil
}
