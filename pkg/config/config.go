package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	Stripe       StripeConfig
	Redis        RedisConfig
	Registration RegistrationConfig
	Vendors      VendorsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	LogLevel      string
	Debug         bool   // expone el detalle de errores del proveedor de pagos
	EncryptionKey string // secreto del que se deriva la llave AES de credenciales reversibles
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StripeConfig proveedor de pagos.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string // debe contener {CHECKOUT_SESSION_ID}
	CancelURL     string
}

// RedisConfig almacén de idempotencia de webhooks. Addr vacío = deshabilitado.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RegistrationConfig límites del registro en sistemas externos.
type RegistrationConfig struct {
	Concurrency   int           // workers simultáneos por lote
	ItemTimeout   time.Duration // timeout por usuario
	RatePerSecond float64       // llamadas salientes por proveedor
	SessionTTL    time.Duration // vida asumida de un token externo sin claim exp
}

// VendorsConfig parámetros fijos de cada proveedor externo.
type VendorsConfig struct {
	DoctorPlatformRole string
	TGCServiceEmail    string
	TGCServicePassword string
	TGCRole            string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "crm-portal"),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			Debug:         getBool(v, "APP_DEBUG", false),
			EncryptionKey: getString(v, "APP_ENCRYPTION_KEY", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "crm_portal"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "crm-portal"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Stripe: StripeConfig{
			SecretKey:     getString(v, "STRIPE_SECRET_KEY", ""),
			WebhookSecret: getString(v, "STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getString(v, "STRIPE_SUCCESS_URL", "http://localhost:3000/subscription/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:     getString(v, "STRIPE_CANCEL_URL", "http://localhost:3000/subscription/cancel"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Registration: RegistrationConfig{
			Concurrency:   getInt(v, "REGISTRATION_CONCURRENCY", 4),
			ItemTimeout:   time.Duration(getInt(v, "REGISTRATION_TIMEOUT_SECONDS", 30)) * time.Second,
			RatePerSecond: getFloat(v, "EXTERNAL_RATE_PER_SECOND", 5),
			SessionTTL:    time.Duration(getInt(v, "SSO_FALLBACK_TTL_MINUTES", 60)) * time.Minute,
		},
		Vendors: VendorsConfig{
			DoctorPlatformRole: getString(v, "DOCTOR_PLATFORM_ROLE", "doctor"),
			TGCServiceEmail:    getString(v, "TGC_SERVICE_EMAIL", ""),
			TGCServicePassword: getString(v, "TGC_SERVICE_PASSWORD", ""),
			TGCRole:            getString(v, "TGC_ROLE", "operator"),
		},
	}

	if cfg.Registration.Concurrency <= 0 {
		cfg.Registration.Concurrency = 1
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
