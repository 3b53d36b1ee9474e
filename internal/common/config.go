package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	HTTP    HTTPConfig    `yaml:"http"`
	OCR     OCRConfig     `yaml:"ocr"`
	Captcha CaptchaConfig `yaml:"captcha"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// SiteConfig holds the upstream registry site settings.
type SiteConfig struct {
	BaseURL       string `yaml:"base_url"       env:"TOBB_BASE_URL"       env-default:"https://www.ticaretsicil.gov.tr"`
	LoginEmail    string `yaml:"login_email"    env:"TOBB_LOGIN_EMAIL"`
	LoginPassword string `yaml:"login_password" env:"TOBB_LOGIN_PASSWORD"`
	OfficesFile   string `yaml:"offices_file"   env:"TOBB_OFFICES_FILE"   env-default:"./offices.yaml"`

	SessionTTL       time.Duration `yaml:"session_ttl"        env:"SESSION_TTL"        env-default:"30m"`
	LoginRetryDelay  time.Duration `yaml:"login_retry_delay"  env:"LOGIN_RETRY_DELAY"  env-default:"2s"`
	SearchRetryDelay time.Duration `yaml:"search_retry_delay" env:"SEARCH_RETRY_DELAY" env-default:"2s"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"  env:"REQUEST_TIMEOUT"  env-default:"30s"`
	MaxRetries     int           `yaml:"max_retries"      env:"MAX_RETRIES"      env-default:"3"`
	BackoffFactor  float64       `yaml:"backoff_factor"   env:"BACKOFF_FACTOR"   env-default:"0.5"`
	VerifySSL      bool          `yaml:"verify_ssl"       env:"VERIFY_SSL"       env-default:"false"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay" env:"RATE_LIMIT_DELAY" env-default:"1s"`
}

// OCRConfig holds OCR cascade settings.
type OCRConfig struct {
	Lang                string        `yaml:"lang"                  env:"OCR_LANG"                  env-default:"tur+eng"`
	MaxPDFMB            int           `yaml:"max_pdf_mb"            env:"MAX_PDF_MB"                env-default:"20"`
	DPI                 int           `yaml:"dpi"                   env:"OCR_DPI"                   env-default:"300"`
	ColumnDetection     bool          `yaml:"column_detection"      env:"OCR_COLUMN_DETECTION"      env-default:"true"`
	MinColumnGapPx      int           `yaml:"min_column_gap_px"     env:"OCR_MIN_COLUMN_GAP_PX"     env-default:"4"`
	BinarizeBlockSize   int           `yaml:"binarize_block_size"   env:"OCR_BINARIZE_BLOCK_SIZE"   env-default:"31"`
	DenoiseStrength     int           `yaml:"denoise_strength"      env:"OCR_DENOISE_STRENGTH"      env-default:"10"`
	ForcedOCRTimeout    time.Duration `yaml:"forced_ocr_timeout"    env:"OCR_FORCED_TIMEOUT"        env-default:"120s"`
	Pdftotext           string        `yaml:"pdftotext"             env:"OCR_PDFTOTEXT"             env-default:"pdftotext"`
	Pdftoppm            string        `yaml:"pdftoppm"              env:"OCR_PDFTOPPM"              env-default:"pdftoppm"`
	Ocrmypdf            string        `yaml:"ocrmypdf"              env:"OCR_OCRMYPDF"              env-default:"ocrmypdf"`
	TessdataDir         string        `yaml:"tessdata_dir"          env:"TESSDATA_PREFIX"`
}

// CaptchaConfig holds CAPTCHA solving settings.
type CaptchaConfig struct {
	MaxAttempts int `yaml:"max_attempts" env:"CAPTCHA_MAX_ATTEMPTS" env-default:"5"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LoadConfig reads configuration from an optional YAML file and the environment.
// Priority: ENV > YAML > env-default tags. The file path comes from CONFIG_PATH
// (fallback "./config.yaml"); a missing default file is not an error.
func LoadConfig() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded configuration. Login credentials are optional
// here; only the authenticated operations require them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site.BaseURL) == "" {
		return NewAppError(KindInvalidInput, "TOBB_BASE_URL is required", ErrInvalidInput)
	}
	if c.HTTP.MaxRetries < 1 {
		return NewAppError(KindInvalidInput, "MAX_RETRIES must be >= 1", ErrInvalidInput)
	}
	if c.HTTP.RateLimitDelay < 0 {
		return NewAppError(KindInvalidInput, "RATE_LIMIT_DELAY must not be negative", ErrInvalidInput)
	}
	if c.OCR.MaxPDFMB <= 0 {
		return NewAppError(KindInvalidInput, "MAX_PDF_MB must be > 0", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError(KindInvalidInput, "OCR_DPI must be > 0", ErrInvalidInput)
	}
	if c.OCR.BinarizeBlockSize < 3 || c.OCR.BinarizeBlockSize%2 == 0 {
		return NewAppError(KindInvalidInput, "OCR_BINARIZE_BLOCK_SIZE must be odd and >= 3", ErrInvalidInput)
	}
	if c.OCR.DenoiseStrength < 0 {
		return NewAppError(KindInvalidInput, "OCR_DENOISE_STRENGTH must not be negative", ErrInvalidInput)
	}
	if c.OCR.MinColumnGapPx < 1 {
		return NewAppError(KindInvalidInput, "OCR_MIN_COLUMN_GAP_PX must be >= 1", ErrInvalidInput)
	}
	if c.Captcha.MaxAttempts < 1 {
		return NewAppError(KindInvalidInput, "CAPTCHA_MAX_ATTEMPTS must be >= 1", ErrInvalidInput)
	}
	return nil
}

// HasCredentials reports whether both login fields are set.
func (s SiteConfig) HasCredentials() bool {
	return s.LoginEmail != "" && s.LoginPassword != ""
}

// MaxPDFBytes converts the megabyte limit to bytes.
func (o OCRConfig) MaxPDFBytes() int64 {
	return int64(o.MaxPDFMB) * 1024 * 1024
}

// Languages splits the tesseract-style "tur+eng" language spec.
func (o OCRConfig) Languages() []string {
	var out []string
	for _, l := range strings.Split(o.Lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
