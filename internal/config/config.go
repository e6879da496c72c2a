package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/nik132-eng/roastit/internal/domain"
)

type Config struct {
	Site   Site   `yaml:"site"`
	Server Server `yaml:"server"`
	Media  Media  `yaml:"media"`
	Sweep  Sweep  `yaml:"sweep"`
}

type Site struct {
	FQDN          string `yaml:"fqdn"`
	SessionSecret string `yaml:"sessionSecret"`
	SessionCookie string `yaml:"sessionCookie"`
}

type Server struct {
	ListenAddr     string   `yaml:"listenAddr"`
	PostgresDsn    string   `yaml:"postgresDsn"`
	RedisAddr      string   `yaml:"redisAddr"`
	RedisPassword  string   `yaml:"redisPassword"`
	RedisDB        int      `yaml:"redisDB"`
	MemcachedAddr  string   `yaml:"memcachedAddr"`
	EnableTrace    bool     `yaml:"enableTrace"`
	TraceEndpoint  string   `yaml:"traceEndpoint"`
	MaxUploadSize  string   `yaml:"maxUploadSize"` // echo body limit notation, e.g. 10M
	WriteRateLimit float64  `yaml:"writeRateLimit"`
	AllowOrigins   []string `yaml:"allowOrigins"`
	LogLevel       string   `yaml:"logLevel"`
}

type Media struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	PublicBaseURL string `yaml:"publicBaseURL"`
	UsePathStyle  bool   `yaml:"usePathStyle"`
	Prefix        string `yaml:"prefix"`
}

type Sweep struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	GracePeriod time.Duration `yaml:"gracePeriod"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Site.SessionCookie == "" {
		c.Site.SessionCookie = domain.SessionCookieDefault
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.Server.MaxUploadSize == "" {
		c.Server.MaxUploadSize = "10M"
	}
	if c.Server.WriteRateLimit == 0 {
		c.Server.WriteRateLimit = 5
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"*"}
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Media.Region == "" {
		c.Media.Region = "auto"
	}
	if c.Media.Prefix == "" {
		c.Media.Prefix = "uploads/"
	}
	if !strings.HasSuffix(c.Media.Prefix, "/") {
		c.Media.Prefix += "/"
	}
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = 6 * time.Hour
	}
	if c.Sweep.GracePeriod == 0 {
		c.Sweep.GracePeriod = time.Hour
	}
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case c.Server.PostgresDsn == "":
		return fmt.Errorf("config: server.postgresDsn is required")
	case c.Site.SessionSecret == "":
		return fmt.Errorf("config: site.sessionSecret is required")
	case c.Media.Bucket == "":
		return fmt.Errorf("config: media.bucket is required")
	case c.Media.PublicBaseURL == "":
		return fmt.Errorf("config: media.publicBaseURL is required")
	}
	return nil
}
