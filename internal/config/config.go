package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Redis     Redis     `mapstructure:",squash"`
	Meta      Meta      `mapstructure:",squash"`
	GoogleAds GoogleAds `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
	LiveSync  LiveSync  `mapstructure:",squash"`
	Alerts    Alerts    `mapstructure:",squash"`
	// SecretKey valida os JWT emitidos pelo serviço de autenticação
	SecretKey string `mapstructure:"secret_key"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	SSLMode  string `mapstructure:"database_sslmode"`
}

// Redis vazio mantém o lock de sincronização em memória (instância única)
type Redis struct {
	URL         string        `mapstructure:"redis_url"`
	SyncLockTTL time.Duration `mapstructure:"sync_lock_ttl"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	URL         string `mapstructure:"-"`
	Version     string `mapstructure:"meta_version"`
	AccessToken string `mapstructure:"meta_access_token"`
	AdAccountID string `mapstructure:"meta_ad_account_id"`
}

type GoogleAds struct {
	BaseURL         string `mapstructure:"google_ads_base_url"`
	APIVersion      string `mapstructure:"google_ads_api_version"`
	TokenURL        string `mapstructure:"google_ads_token_url"`
	ClientID        string `mapstructure:"google_ads_client_id"`
	ClientSecret    string `mapstructure:"google_ads_client_secret"`
	DeveloperToken  string `mapstructure:"google_ads_developer_token"`
	RefreshToken    string `mapstructure:"google_ads_refresh_token"`
	CustomerID      string `mapstructure:"google_ads_customer_id"`
	LoginCustomerID string `mapstructure:"google_ads_login_customer_id"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Auth.Secret deriva a chave que cifra as credenciais das plataformas no banco
type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type LiveSync struct {
	Enabled            bool          `mapstructure:"live_sync_enabled"`
	Interval           time.Duration `mapstructure:"live_sync_interval"`
	AdapterTimeout     time.Duration `mapstructure:"live_sync_adapter_timeout"`
	MaxConcurrentJobs  int           `mapstructure:"live_sync_max_concurrent_jobs"`
	RetryAttempts      int           `mapstructure:"live_sync_retry_attempts"`
	RetryBaseDelay     time.Duration `mapstructure:"live_sync_retry_base_delay"`
	ActiveUserTTL      time.Duration `mapstructure:"live_sync_active_user_ttl"`
	HealthCheckTimeout time.Duration `mapstructure:"live_sync_health_check_timeout"`
}

type Alerts struct {
	LowCTRThreshold            float64       `mapstructure:"alert_low_ctr_threshold"`
	LowCTRMinImpressions       int64         `mapstructure:"alert_low_ctr_min_impressions"`
	HighCPCCeiling             float64       `mapstructure:"alert_high_cpc_ceiling"`
	HighCPCMinClicks           int64         `mapstructure:"alert_high_cpc_min_clicks"`
	LowROASThreshold           float64       `mapstructure:"alert_low_roas_threshold"`
	LowROASMinConversions      float64       `mapstructure:"alert_low_roas_min_conversions"`
	LowConversionRateThreshold float64       `mapstructure:"alert_low_conversion_rate_threshold"`
	LowConversionRateMinClicks int64         `mapstructure:"alert_low_conversion_rate_min_clicks"`
	Cooldown                   time.Duration `mapstructure:"alert_cooldown"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/live_performance")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_SSLMODE", "disable")

	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SYNC_LOCK_TTL", 2*time.Minute)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "")
	viper.SetDefault("META_AD_ACCOUNT_ID", "")

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_API_VERSION", "v18")
	viper.SetDefault("GOOGLE_ADS_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_ADS_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "")
	viper.SetDefault("GOOGLE_ADS_REFRESH_TOKEN", "")
	viper.SetDefault("GOOGLE_ADS_CUSTOMER_ID", "")
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")
	viper.SetDefault("SECRET_KEY", "your_secret_key")

	// Defaults para a sincronização ao vivo
	viper.SetDefault("LIVE_SYNC_ENABLED", true)
	viper.SetDefault("LIVE_SYNC_INTERVAL", 5*time.Minute)
	viper.SetDefault("LIVE_SYNC_ADAPTER_TIMEOUT", 60*time.Second) // menor que o intervalo
	viper.SetDefault("LIVE_SYNC_MAX_CONCURRENT_JOBS", 5)
	viper.SetDefault("LIVE_SYNC_RETRY_ATTEMPTS", 3)
	viper.SetDefault("LIVE_SYNC_RETRY_BASE_DELAY", 500*time.Millisecond)
	viper.SetDefault("LIVE_SYNC_ACTIVE_USER_TTL", 30*time.Minute) // sessão de dashboard sem atividade
	viper.SetDefault("LIVE_SYNC_HEALTH_CHECK_TIMEOUT", 10*time.Second)

	// Defaults das regras de alerta
	viper.SetDefault("ALERT_LOW_CTR_THRESHOLD", 1.0)
	viper.SetDefault("ALERT_LOW_CTR_MIN_IMPRESSIONS", 1000)
	viper.SetDefault("ALERT_HIGH_CPC_CEILING", 5.0)
	viper.SetDefault("ALERT_HIGH_CPC_MIN_CLICKS", 10)
	viper.SetDefault("ALERT_LOW_ROAS_THRESHOLD", 2.0)
	viper.SetDefault("ALERT_LOW_ROAS_MIN_CONVERSIONS", 3)
	viper.SetDefault("ALERT_LOW_CONVERSION_RATE_THRESHOLD", 1.0)
	viper.SetDefault("ALERT_LOW_CONVERSION_RATE_MIN_CLICKS", 50)
	viper.SetDefault("ALERT_COOLDOWN", time.Hour) // 0 dispara a cada ciclo

	viper.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s?sslmode=%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
		config.Database.SSLMode,
	)

	return config, nil
}

// Validate rejeita combinações que deixariam o agendador sem efeito ou travado
func (c *Config) Validate() error {
	if c.LiveSync.Interval <= 0 {
		return fmt.Errorf("LIVE_SYNC_INTERVAL deve ser positivo, recebido %s", c.LiveSync.Interval)
	}

	if c.LiveSync.AdapterTimeout <= 0 || c.LiveSync.AdapterTimeout >= c.LiveSync.Interval {
		return fmt.Errorf("LIVE_SYNC_ADAPTER_TIMEOUT (%s) deve ser positivo e menor que LIVE_SYNC_INTERVAL (%s)",
			c.LiveSync.AdapterTimeout, c.LiveSync.Interval)
	}

	if c.LiveSync.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("LIVE_SYNC_MAX_CONCURRENT_JOBS deve ser positivo, recebido %d", c.LiveSync.MaxConcurrentJobs)
	}

	if c.Alerts.Cooldown < 0 {
		return fmt.Errorf("ALERT_COOLDOWN não pode ser negativo")
	}

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
