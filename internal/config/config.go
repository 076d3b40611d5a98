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
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	Matching        Matching        `mapstructure:",squash"`
	Ingestion       Ingestion       `mapstructure:",squash"`
	DataQualitySync DataQualitySync `mapstructure:",squash"`
	SuggestionSync  SuggestionSync  `mapstructure:",squash"`
	SecretKey       string          `mapstructure:"secret_key"`
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

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Matching controla a resolução de identidade de lojas. O limiar é um valor
// de configuração de propósito: é heurística herdada do comportamento
// observado, não contrato validado.
type Matching struct {
	FuzzyThreshold float64 `mapstructure:"matching_fuzzy_threshold"`
}

// Ingestion controla o lote de upsert das transações
type Ingestion struct {
	BatchSize int `mapstructure:"ingestion_batch_size"`
}

type DataQualitySync struct {
	CronSchedule  string `mapstructure:"data_quality_sync_cron"`
	LookbackWeeks int    `mapstructure:"data_quality_sync_lookback_weeks"`
	Enabled       bool   `mapstructure:"data_quality_sync_enabled"`
}

type SuggestionSync struct {
	CronSchedule string `mapstructure:"suggestion_sync_cron"`
	Enabled      bool   `mapstructure:"suggestion_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/deliveryrecon")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Limiar de similaridade herdado do comportamento observado (0.8).
	// Abaixo disso a transação cai na sentinela "Unmapped Locations".
	viper.SetDefault("MATCHING_FUZZY_THRESHOLD", 0.8)

	// Tamanho de lote do upsert: limita o tamanho do statement e a memória
	viper.SetDefault("INGESTION_BATCH_SIZE", 100)

	// Defaults para o scan de qualidade de dados
	viper.SetDefault("DATA_QUALITY_SYNC_CRON", "0 5 * * *") // Todos os dias às 5h da manhã
	viper.SetDefault("DATA_QUALITY_SYNC_LOOKBACK_WEEKS", 8) // 8 semanas de histórico
	viper.SetDefault("DATA_QUALITY_SYNC_ENABLED", false)    // Habilitar scan de qualidade

	// Defaults para o resumo de sugestões de match
	viper.SetDefault("SUGGESTION_SYNC_CRON", "0 6 * * *") // Todos os dias às 6h da manhã
	viper.SetDefault("SUGGESTION_SYNC_ENABLED", false)    // Habilitar resumo de sugestões

	viper.SetDefault("LOG_LEVEL", "debug")
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

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
