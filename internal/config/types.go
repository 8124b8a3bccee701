package config

// Config is the full fxsentry configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Source   SourceConfig   `mapstructure:"source"`
	Price    PriceConfig    `mapstructure:"price"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Session  SessionConfig  `mapstructure:"session"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Store    StoreConfig    `mapstructure:"store"`
	Report   ReportConfig   `mapstructure:"report"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	HTTPAddr string `mapstructure:"http_addr"`
}

// SourceConfig locates the external signal generator.
type SourceConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PriceConfig selects and configures the quote provider.
// provider: "binance" for crypto pairs, "http" for a generic JSON quote
// endpoint (forex), using url_template/quote_path with {pair} substitution.
type PriceConfig struct {
	Provider       string `mapstructure:"provider"`
	BaseURL        string `mapstructure:"base_url"`
	URLTemplate    string `mapstructure:"url_template"`
	QuotePath      string `mapstructure:"quote_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Email    EmailConfig    `mapstructure:"email"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	Subject  string   `mapstructure:"subject"`
}

// SessionConfig either points at a watchable windows file or carries the
// windows inline. The file wins when both are set.
type SessionConfig struct {
	File             string   `mapstructure:"file"`
	Windows          []string `mapstructure:"windows"`
	ExcludedWeekdays []string `mapstructure:"excluded_weekdays"`
}

type DispatchConfig struct {
	Interval           string `mapstructure:"interval"`  // e.g. "15m"
	OffsetSeconds      int    `mapstructure:"offset_seconds"`
	Retention          string `mapstructure:"retention"` // e.g. "24h"; "none" never expires
	CallTimeoutSeconds int    `mapstructure:"call_timeout_seconds"`
	MaxConcurrency     int    `mapstructure:"max_concurrency"`
	LedgerCapacity     int    `mapstructure:"ledger_capacity"`
	RunImmediately     bool   `mapstructure:"run_immediately"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ReportConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Hour    int  `mapstructure:"hour"` // UTC
}
