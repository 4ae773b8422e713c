// internal/service/config.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 是整个系统的配置树
type Config struct {
	Logging    LoggingConfig    `mapstructure:"Logging"`
	News       NewsConfig       `mapstructure:"News"`
	MarketData MarketDataConfig `mapstructure:"MarketData"`
	Gate       GateConfig       `mapstructure:"Gate"`
	Risk       RiskConfig       `mapstructure:"Risk"`
	Exit       ExitConfig       `mapstructure:"Exit"`
	Session    SessionConfig    `mapstructure:"Session"`
	Redis      RedisConfig      `mapstructure:"Redis"`
	Database   DatabaseConfig   `mapstructure:"Database"`
	Kafka      KafkaConfig      `mapstructure:"Kafka"`
	Server     ServerConfig     `mapstructure:"Server"`
	Export     ExportConfig     `mapstructure:"Export"`
}

type LoggingConfig struct {
	Level string
}

// NewsConfig 新闻轮询与入选阈值
type NewsConfig struct {
	PollInterval   time.Duration
	ScoreThreshold float64
	WatchTTL       time.Duration // 观察列表条目过期时间，0 表示不过期
	MaxPages       int
	Providers      []ProviderConfig
}

type ProviderConfig struct {
	Name   string
	URL    string
	APIKey string
	Source string // 为空时使用条目自带的 source
}

// MarketDataConfig 行情 WebSocket 连接信息
type MarketDataConfig struct {
	WSURL          string
	APIKey         string
	Symbols        []string
	ReconnectDelay time.Duration
}

// GateConfig 价格确认门限
type GateConfig struct {
	WindowSize int
	VolZMin    float64
	Ret1mMin   float64
	VwapDevMin float64
}

// RiskConfig 定义了仓位计算参数
type RiskConfig struct {
	StartingCash    float64
	RiskPct         float64 // 单笔风险占净值比例 (0.01 = 1%)
	MinPrice        float64
	TickSize        float64
	LotSize         float64
	StopPct         float64 // 止损距离比例 (0.08 = 入场价下方 8%)
	StopFloor       float64 // 止损距离的美元下限
	MinRiskPerShare float64
	MaxNotional     float64
	MinNotional     float64
	SlippageFlat    float64
	SlippageBps     float64
}

// ExitConfig 出场规则
type ExitConfig struct {
	TrailingStopPct float64
	ProfitTargetPct float64
	TimeStop        time.Duration
	TimeStopMinGain float64
}

type SessionConfig struct {
	Timezone string
}

type RedisConfig struct {
	Addr     string // 为空时使用内存去重
	Password string
	DB       int
	TTL      time.Duration
}

type DatabaseConfig struct {
	URL            string // 为空时不落库
	MigrationsPath string
}

type KafkaConfig struct {
	Brokers     []string // 为空时不发布事件
	SignalTopic string
	FillTopic   string
}

type ServerConfig struct {
	Addr string
}

type ExportConfig struct {
	FillsCSV string
}

// GlobalConfig 存储加载后的全局配置
var GlobalConfig Config

// SetDefaults 为所有配置项写入默认值，保证空配置文件也能启动
func SetDefaults(v *viper.Viper) {
	v.SetDefault("Logging.Level", "info")

	v.SetDefault("News.PollInterval", "30s")
	v.SetDefault("News.ScoreThreshold", 0.6)
	v.SetDefault("News.WatchTTL", "2h")
	v.SetDefault("News.MaxPages", 3)

	v.SetDefault("MarketData.WSURL", "wss://socket.polygon.io/stocks")
	v.SetDefault("MarketData.APIKey", "")
	v.SetDefault("MarketData.Symbols", []string{})
	v.SetDefault("MarketData.ReconnectDelay", "5s")

	v.SetDefault("Gate.WindowSize", 60)
	v.SetDefault("Gate.VolZMin", 2.0)
	v.SetDefault("Gate.Ret1mMin", 0.03)
	v.SetDefault("Gate.VwapDevMin", 0.02)

	v.SetDefault("Risk.StartingCash", 10000.0)
	v.SetDefault("Risk.RiskPct", 0.01)
	v.SetDefault("Risk.MinPrice", 0.01)
	v.SetDefault("Risk.TickSize", 0.01)
	v.SetDefault("Risk.LotSize", 1.0)
	v.SetDefault("Risk.StopPct", 0.08)
	v.SetDefault("Risk.StopFloor", 0.50)
	v.SetDefault("Risk.MinRiskPerShare", 0.01)
	v.SetDefault("Risk.MaxNotional", 5000.0)
	v.SetDefault("Risk.MinNotional", 5000.0)
	v.SetDefault("Risk.SlippageFlat", 0.01)
	v.SetDefault("Risk.SlippageBps", 5.0)

	v.SetDefault("Exit.TrailingStopPct", 0.12)
	v.SetDefault("Exit.ProfitTargetPct", 0.50)
	v.SetDefault("Exit.TimeStop", "30m")
	v.SetDefault("Exit.TimeStopMinGain", 0.03)

	v.SetDefault("Session.Timezone", "America/New_York")

	v.SetDefault("Redis.Addr", "")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.TTL", "72h")

	v.SetDefault("Database.URL", "")
	v.SetDefault("Database.MigrationsPath", "db/migrations")

	v.SetDefault("Kafka.Brokers", []string{})
	v.SetDefault("Kafka.SignalTopic", "catalyst-signals")
	v.SetDefault("Kafka.FillTopic", "catalyst-fills")

	v.SetDefault("Server.Addr", ":8080")
	v.SetDefault("Export.FillsCSV", "fills.csv")
}

// LoadConfig 读取并解析配置文件，文件缺失时仅使用默认值和环境变量
func LoadConfig(configPath string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("CATALYST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	GlobalConfig = cfg
	return &cfg, nil
}
