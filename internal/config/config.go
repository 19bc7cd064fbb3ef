package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	DailySummarySync DailySummarySync `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
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
}

type DailySummarySync struct {
	CronSchedule  string `mapstructure:"daily_summary_sync_cron"`
	LookbackDays  int    `mapstructure:"daily_summary_sync_lookback_days"`
	RetentionDays int    `mapstructure:"daily_summary_sync_retention_days"`
	Enabled       bool   `mapstructure:"daily_summary_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/altona")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	// Defaults del planificador de resúmenes diarios
	viper.SetDefault("DAILY_SUMMARY_SYNC_CRON", "0 3 * * *") // Todos los días a las 3h
	viper.SetDefault("DAILY_SUMMARY_SYNC_LOOKBACK_DAYS", 3)  // Recalcular los últimos 3 días
	viper.SetDefault("DAILY_SUMMARY_SYNC_RETENTION_DAYS", 365)
	viper.SetDefault("DAILY_SUMMARY_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Cargar primero el archivo .env con godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variables cargadas por godotenv (viper no pudo leer .env):", err)
	} else {
		logrus.Info("Archivo .env leído por Viper con éxito")
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

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// loadEnvFile intenta cargar el .env desde las localizaciones habituales
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("No se pudo obtener el directorio actual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Archivo .env cargado desde:", location)
			return
		}
	}

	logrus.Warn("No se pudo cargar el archivo .env desde ninguna localización conocida")
}
