package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体。凭证可通过环境变量覆盖配置文件。
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Firecrawl   FirecrawlConfig   `yaml:"firecrawl"`
	CoinGecko   CoinGeckoConfig   `yaml:"coingecko"`
	Polymarket  PolymarketConfig  `yaml:"polymarket"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Timeout     TimeoutConfig     `yaml:"timeout"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr    string `yaml:"addr" env:"CLAWCAST_ADDR"`
	Timeout string `yaml:"timeout"`
}

// LLMConfig 推理模型相关配置
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url" env:"CLAWCAST_LLM_BASE_URL"`
	APIKey      string  `yaml:"api_key" env:"CLAWCAST_LLM_API_KEY"`
	Model       string  `yaml:"model" env:"CLAWCAST_LLM_MODEL"`
	Temperature float32 `yaml:"temperature"`
}

// FirecrawlConfig 网页搜索服务配置
type FirecrawlConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key" env:"FIRECRAWL_API_KEY"`
}

// CoinGeckoConfig 行情数据服务配置
type CoinGeckoConfig struct {
	BaseURL string `yaml:"base_url"`
}

// PolymarketConfig 预测市场服务配置
type PolymarketConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// TimeoutConfig 各阶段超时（秒）
type TimeoutConfig struct {
	Gather    int `yaml:"gather"`
	Synthesis int `yaml:"synthesis"`
	Fetch     int `yaml:"fetch"`
}

// LoadConfig 加载配置文件并应用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 2
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 60
	}
	if c.Timeout.Gather == 0 {
		c.Timeout.Gather = 20
	}
	if c.Timeout.Synthesis == 0 {
		c.Timeout.Synthesis = 60
	}
	if c.Timeout.Fetch == 0 {
		c.Timeout.Fetch = 15
	}
}

// MissingCredential 返回第一个缺失的必需凭证名，全部就绪时返回空串。
// 在发起任何网络请求之前必须检查。
func (c *Config) MissingCredential() string {
	if c.LLM.APIKey == "" {
		return "llm api key"
	}
	if c.Firecrawl.APIKey == "" {
		return "firecrawl api key"
	}
	return ""
}
