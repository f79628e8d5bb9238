package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	MySQL        MySQLConfig        `mapstructure:"mysql"`
	Shopify      ShopifyConfig      `mapstructure:"shopify"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	Notification NotificationConfig `mapstructure:"notification"`
	Uploads      UploadsConfig      `mapstructure:"uploads"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// GetDSN returns the explicit DSN when set, otherwise builds one from parts.
func (c MySQLConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type ShopifyConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	APISecret        string        `mapstructure:"api_secret"`
	APIVersion       string        `mapstructure:"api_version"`
	AdminAccessToken string        `mapstructure:"admin_access_token"`
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type NotificationConfig struct {
	Recipient    string `mapstructure:"recipient"`
	CustomerName string `mapstructure:"customer_name"`
}

type UploadsConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

var defaults = map[string]any{
	"server.port":             "8080",
	"server.mode":             "release",
	"server.shutdown_timeout": 10 * time.Second,

	"log.level":  "info",
	"log.format": "json",

	"mysql.dsn":            "",
	"mysql.host":           "localhost",
	"mysql.port":           "3306",
	"mysql.user":           "root",
	"mysql.password":       "",
	"mysql.database":       "order_timeline",
	"mysql.max_open_conns": 50,
	"mysql.max_idle_conns": 10,

	"shopify.api_key":            "",
	"shopify.api_secret":         "",
	"shopify.api_version":        "2024-07",
	"shopify.admin_access_token": "",
	"shopify.base_url":           "",
	"shopify.timeout":            10 * time.Second,

	"smtp.host": "smtp.gmail.com",
	"smtp.port": 587,
	"smtp.user": "",
	"smtp.pass": "",

	"notification.recipient":     "",
	"notification.customer_name": "Customer",

	"uploads.dir":        "uploads",
	"uploads.url_prefix": "/uploads",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,

	"rabbitmq.url":      "",
	"rabbitmq.exchange": "order.exchange",
}

// Load reads configuration from an optional .env file, an optional
// config.yaml and the environment. Environment variables win: SMTP_USER
// maps to smtp.user, MYSQL_HOST to mysql.host and so on.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// PORT is what most platforms inject.
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.port", port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MySQL.DSN == "" && (c.MySQL.Host == "" || c.MySQL.Database == "") {
		return fmt.Errorf("mysql.dsn or mysql.host and mysql.database are required")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be between 1 and 65535")
	}
	if c.Notification.Recipient == "" {
		return fmt.Errorf("notification.recipient is required")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads.dir is required")
	}
	if c.Shopify.APIVersion == "" {
		return fmt.Errorf("shopify.api_version is required")
	}
	if c.Shopify.APIKey == "" || c.Shopify.APISecret == "" {
		return fmt.Errorf("shopify.api_key and shopify.api_secret are required")
	}
	return nil
}
