package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Email    EmailConfig    `mapstructure:"email"`
	Widgets  WidgetsConfig  `mapstructure:"widgets"`
	Log      LogConfig      `mapstructure:"log"`

	// Sources 实际合并的配置来源，启动时打印
	Sources []string `mapstructure:"-"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	// AllowedOrigins 允许携带 Cookie 跨域访问的来源
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AppConfig 单用户/多用户开关
type AppConfig struct {
	MultiUser    bool `mapstructure:"multi_user"`
	SingleUserID uint `mapstructure:"single_user_id"`
}

// StorageConfig 存储后端
type StorageConfig struct {
	Backend string    `mapstructure:"backend"`
	CSV     CSVConfig `mapstructure:"csv"`
}

// CSVConfig CSV 存储配置
type CSVConfig struct {
	ExpenseFile string `mapstructure:"expense_file"`
	IncomeFile  string `mapstructure:"income_file"`
	Format      string `mapstructure:"format"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	SSLMode  string `mapstructure:"sslmode"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// LedgerConfig 账本配置
type LedgerConfig struct {
	Categories       []string `mapstructure:"categories"`
	StrictCategories bool     `mapstructure:"strict_categories"`
}

// AuthConfig 认证相关配置
type AuthConfig struct {
	AllowForgotPassword    bool `mapstructure:"allow_forgot_password"`
	LoginRateLimit         int  `mapstructure:"login_rate_limit"`
	LoginRateWindowSeconds int  `mapstructure:"login_rate_window_seconds"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// WidgetsConfig 天气与加密货币小组件配置
type WidgetsConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	City              string   `mapstructure:"city"`
	Units             string   `mapstructure:"units"`
	OpenWeatherAPIKey string   `mapstructure:"openweather_api_key"`
	OpenWeatherURL    string   `mapstructure:"openweather_url"`
	CoinGeckoURL      string   `mapstructure:"coingecko_url"`
	Coins             []string `mapstructure:"coins"`
	VsCurrency        string   `mapstructure:"vs_currency"`
	MemcacheHosts     []string `mapstructure:"memcache_hosts"`
	CacheTTLSeconds   int      `mapstructure:"cache_ttl_seconds"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Env string `mapstructure:"env"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	var sources []string

	// 1. 嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	sources = append(sources, "embedded")

	// 2. .env 文件（可选）写入进程环境变量
	if err := godotenv.Load(); err == nil {
		sources = append(sources, ".env")
	}

	// 3. 外部配置文件（可选）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configPath, err)
		}
		sources = append(sources, configPath)
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("/etc/budget")
		externalViper.AddConfigPath("$HOME/.budget")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("合并外部配置失败: %w", err)
			}
			sources = append(sources, externalViper.ConfigFileUsed())
		}
	}

	// 4. 环境变量覆盖，例如 BUDGET_DATABASE_DRIVER=mysql
	v.SetEnvPrefix("BUDGET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Sources = sources

	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour
	if cfg.App.SingleUserID == 0 {
		cfg.App.SingleUserID = 1
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

// Validate 校验配置组合是否合法
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case "database", "memory":
	case "csv":
		if c.App.MultiUser {
			problems = append(problems, "csv 存储仅支持单用户模式 (app.multi_user=false)")
		}
		if c.Storage.CSV.Format != "plain" && c.Storage.CSV.Format != "dated" {
			problems = append(problems, fmt.Sprintf("未知的 csv 格式 %q，可选值：plain、dated", c.Storage.CSV.Format))
		}
	default:
		problems = append(problems, fmt.Sprintf("未知的存储后端 %q，可选值：database、csv、memory", c.Storage.Backend))
	}

	if c.Storage.Backend == "database" {
		switch c.Database.Driver {
		case "sqlite", "mysql", "postgres":
		default:
			problems = append(problems, fmt.Sprintf("未知的数据库驱动 %q，可选值：sqlite、mysql、postgres", c.Database.Driver))
		}
	}

	if len(c.Ledger.Categories) == 0 {
		problems = append(problems, "ledger.categories 不能为空")
	}

	if c.App.MultiUser && c.JWT.Secret == "" {
		problems = append(problems, "多用户模式需要配置 jwt.secret")
	}

	if c.App.MultiUser {
		if c.Auth.LoginRateLimit <= 0 {
			problems = append(problems, "auth.login_rate_limit 必须大于 0")
		}
		if c.Auth.LoginRateWindowSeconds <= 0 {
			problems = append(problems, "auth.login_rate_window_seconds 必须大于 0")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("配置无效: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}

// Summary 当前配置摘要（隐藏敏感信息）
func (c *Config) Summary() []string {
	lines := []string{
		fmt.Sprintf("服务器: %s (模式: %s)", c.Server.Port, c.Server.Mode),
		fmt.Sprintf("多用户: %v", c.App.MultiUser),
		fmt.Sprintf("存储: %s", c.Storage.Backend),
	}
	switch c.Storage.Backend {
	case "database":
		if c.Database.Driver == "sqlite" {
			lines = append(lines, fmt.Sprintf("数据库: sqlite %s", c.Database.Path))
		} else {
			lines = append(lines, fmt.Sprintf("数据库: %s %s@%s:%s/%s",
				c.Database.Driver, c.Database.Username, c.Database.Host, c.Database.Port, c.Database.DBName))
		}
	case "csv":
		lines = append(lines, fmt.Sprintf("CSV: %s, %s (%s)",
			c.Storage.CSV.ExpenseFile, c.Storage.CSV.IncomeFile, c.Storage.CSV.Format))
	}
	lines = append(lines,
		fmt.Sprintf("类别: %s", strings.Join(c.Ledger.Categories, ", ")),
		fmt.Sprintf("邮件服务: %v", c.Email.Enabled),
		fmt.Sprintf("小组件: %v", c.Widgets.Enabled),
	)
	return lines
}
