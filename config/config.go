package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"invitegen"`

	// PostgreSQL 配置，模板存储
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"invitegen"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"invg"`

	// RabbitMQ 配置
	RabbitMQEnabled  bool   `env:"RABBITMQ_ENABLED" envDefault:"true"`
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// HubSpot CRM 配置，token 缺失时请求阶段返回 500，而不是启动失败
	HubSpotAccessToken string `env:"HUBSPOT_ACCESS_TOKEN"`
	HubSpotBaseURL     string `env:"HUBSPOT_BASE_URL" envDefault:"https://api.hubapi.com"`

	// 通讯录缓存
	DirectoryCacheTTL    time.Duration `env:"DIRECTORY_CACHE_TTL" envDefault:"10m"`
	DirectoryRefreshCron string        `env:"DIRECTORY_REFRESH_CRON" envDefault:"*/5 * * * *"`

	// 邀请渲染
	InviteTimezone      string `env:"INVITE_TIMEZONE" envDefault:"America/Los_Angeles"`
	InviteTimezoneLabel string `env:"INVITE_TIMEZONE_LABEL" envDefault:"PST"`
	// 固定的额外参会人，前端勾选后追加到参会人列表末尾
	InviteExtraParticipantEmail string `env:"INVITE_EXTRA_PARTICIPANT_EMAIL"`
	// 客户端（resolver）访问网关的地址
	GatewayBaseURL string `env:"GATEWAY_BASE_URL" envDefault:"http://localhost:8888"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`
	ServiceVersion  string  `env:"SERVICE_VERSION" envDefault:"0.1.0"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.HubSpotAccessToken == "" {
		log.Printf("WARN: HUBSPOT_ACCESS_TOKEN is not set, directory endpoints will return 500")
	}

	if Cfg.InviteExtraParticipantEmail == "" {
		log.Printf("WARN: INVITE_EXTRA_PARTICIPANT_EMAIL is not set, the include-extra toggle adds nobody")
	}

	if _, err := time.LoadLocation(Cfg.InviteTimezone); err != nil {
		log.Printf("WARN: INVITE_TIMEZONE %q is invalid, falling back to UTC: %v", Cfg.InviteTimezone, err)
		Cfg.InviteTimezone = "UTC"
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// InviteLocation 返回渲染邀请使用的时区，配置非法时为 UTC
func (c *Config) InviteLocation() *time.Location {
	loc, err := time.LoadLocation(c.InviteTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
