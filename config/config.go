package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"lotbot/backtest"
	"lotbot/strategy"
	"lotbot/utils/tools"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	SourceCSV   = "csv"
	SourceUpbit = "upbit"

	envPrefix = "LOTBOT_"
)

type StrategyConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

type DataConfig struct {
	Source  string `yaml:"source"`
	CSVPath string `yaml:"csv_path"`
	// Start, End : RFC3339 또는 2006-01-02. 비우면 CSV 는 전체, Upbit 는 필수
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type OptimizeConfig struct {
	Workers int                  `yaml:"workers"`
	Grid    map[string][]float64 `yaml:"grid"`
}

type ReportConfig struct {
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Secrets : .env / 환경변수에서만 읽음
type Secrets struct {
	UpbitAccessKey   string
	UpbitSecretKey   string
	TelegramBotToken string
	TelegramChatID   string
}

func (s Secrets) TelegramEnabled() bool {
	return s.TelegramBotToken != "" && s.TelegramChatID != ""
}

type Config struct {
	Backtest backtest.Config `yaml:"backtest"`
	Strategy StrategyConfig  `yaml:"strategy"`
	Data     DataConfig      `yaml:"data"`
	Optimize OptimizeConfig  `yaml:"optimize"`
	Report   ReportConfig    `yaml:"report"`
	Server   ServerConfig    `yaml:"server"`
	Log      LogConfig       `yaml:"log"`
	Secrets  Secrets         `yaml:"-"`
}

// Load : .env -> YAML(path) -> LOTBOT_* 환경변수 순서로 덮어씀. path 가 비면 YAML 생략
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var data []byte
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		data = raw
	}
	return Parse(data)
}

// Parse : YAML 본문 + 환경변수. .env 는 읽지 않음
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Secrets = Secrets{
		UpbitAccessKey:   os.Getenv("UPBIT_ACCESS_KEY"),
		UpbitSecretKey:   os.Getenv("UPBIT_SECRET_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}

	textFields := map[string]*string{
		"PAIR":       &c.Backtest.Pair,
		"TIMEFRAME":  &c.Backtest.Timeframe,
		"POLICY":     &c.Backtest.Policy,
		"STRATEGY":   &c.Strategy.Name,
		"SOURCE":     &c.Data.Source,
		"CSV_PATH":   &c.Data.CSVPath,
		"START":      &c.Data.Start,
		"END":        &c.Data.End,
		"REPORT_DIR": &c.Report.Dir,
		"PORT":       &c.Server.Port,
		"LOG_LEVEL":  &c.Log.Level,
	}
	for key, dst := range textFields {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := lookupEnv("INITIAL_BALANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sINITIAL_BALANCE=%q", ErrInvalidConfig, envPrefix, v)
		}
		c.Backtest.InitialBalance = f
	}
	if v, ok := lookupEnv("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sWORKERS=%q", ErrInvalidConfig, envPrefix, v)
		}
		c.Optimize.Workers = n
	}
	if v, ok := lookupEnv("SERVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sSERVE=%q", ErrInvalidConfig, envPrefix, v)
		}
		c.Server.Enabled = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (c *Config) withDefaults() {
	if c.Strategy.Name == "" {
		c.Strategy.Name = "cross_ema"
	}
	c.Strategy.Name = strings.ToLower(strings.TrimSpace(c.Strategy.Name))
	if c.Data.Source == "" {
		c.Data.Source = SourceCSV
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if !lo.Contains(strategy.Names(), c.Strategy.Name) {
		return fmt.Errorf("%w: strategy %q (known: %s)", ErrInvalidConfig, c.Strategy.Name, strings.Join(strategy.Names(), ", "))
	}

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.CSVPath == "" {
			return fmt.Errorf("%w: data.csv_path is required for csv source", ErrInvalidConfig)
		}
	case SourceUpbit:
		if c.Data.Start == "" || c.Data.End == "" {
			return fmt.Errorf("%w: data.start and data.end are required for upbit source", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: data.source %q", ErrInvalidConfig, c.Data.Source)
	}

	start, end, err := c.Data.Range()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("%w: data.start must be before data.end", ErrInvalidConfig)
	}

	if c.Optimize.Workers < 0 {
		return fmt.Errorf("%w: optimize.workers %d", ErrInvalidConfig, c.Optimize.Workers)
	}
	for name, values := range c.Optimize.Grid {
		if len(values) == 0 {
			return fmt.Errorf("%w: optimize.grid.%s is empty", ErrInvalidConfig, name)
		}
	}

	normalized, err := c.Backtest.Normalize()
	if err != nil {
		return err
	}
	c.Backtest = normalized
	return nil
}

// Range : Start/End 파싱. 빈 값은 zero time
func (d DataConfig) Range() (start, end time.Time, err error) {
	if start, err = tools.ParseDate(d.Start); err != nil {
		return start, end, fmt.Errorf("%w: data.start: %v", ErrInvalidConfig, err)
	}
	if end, err = tools.ParseDate(d.End); err != nil {
		return start, end, fmt.Errorf("%w: data.end: %v", ErrInvalidConfig, err)
	}
	return start, end, nil
}
