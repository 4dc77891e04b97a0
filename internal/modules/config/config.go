package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	defaultConfigFile = "values_local.yaml"
)

// Config ...
type Config struct {
	Telegram struct {
		APIID       int    `yaml:"api_id"`       // ENV: API_ID
		APIHash     string `yaml:"api_hash"`     // ENV: API_HASH
		PhoneNumber string `yaml:"phone_number"` // ENV: PHONE_NUMBER
		SessionName string `yaml:"session_name"` // ENV: SESSION_NAME
		BotUsername string `yaml:"bot_username"` // ENV: BOT_USERNAME
	} `yaml:"telegram"`

	Bybit struct {
		APIKey    string `yaml:"api_key"`    // ENV: API_KEY
		APISecret string `yaml:"api_secret"` // ENV: API_SECRET
		Demo      bool   `yaml:"demo"`       // ENV: BYBIT_DEMO
	} `yaml:"bybit"`

	Service struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"` // ENV: PORT
	} `yaml:"service"`

	// DSN Postgres для хранения сессии мессенджера; пусто — файловое хранилище.
	DB string `yaml:"db_dsn"` // ENV: DATABASE_DSN

	Notify struct {
		BotToken string `yaml:"bot_token"` // ENV: NOTIFY_BOT_TOKEN
		ChatID   int64  `yaml:"chat_id"`   // ENV: NOTIFY_CHAT_ID
	} `yaml:"notify"`

	LogFile string `yaml:"log_file"` // ENV: LOG_FILE

	Jaeger struct {
		Host string `yaml:"host"` // ENV: JAEGER_HOST
		Port int    `yaml:"port"` // ENV: JAEGER_PORT
	} `yaml:"jaeger"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	var config Config
	config.Bybit.Demo = true
	config.Service.Port = 5000

	if err := readConfigFile(&config); err != nil {
		return nil, err
	}
	applyEnv(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func readConfigFile(config *Config) error {
	configFileName := os.Getenv(configFilePathENV)
	required := configFileName != ""
	if configFileName == "" {
		configFileName = defaultConfigFile
	}

	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		if os.IsNotExist(err) && !required {
			// конфиг-файла нет — работаем только от ENV
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			config.Telegram.APIID = id
		}
	}
	setIfEnv(&config.Telegram.APIHash, "API_HASH")
	setIfEnv(&config.Telegram.PhoneNumber, "PHONE_NUMBER")
	setIfEnv(&config.Telegram.SessionName, "SESSION_NAME")
	setIfEnv(&config.Telegram.BotUsername, "BOT_USERNAME")

	setIfEnv(&config.Bybit.APIKey, "API_KEY")
	setIfEnv(&config.Bybit.APISecret, "API_SECRET")
	if v := os.Getenv("BYBIT_DEMO"); v != "" {
		config.Bybit.Demo = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Service.Port = p
		}
	}

	setIfEnv(&config.DB, "DATABASE_DSN")

	setIfEnv(&config.Notify.BotToken, "NOTIFY_BOT_TOKEN")
	if v := os.Getenv("NOTIFY_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Notify.ChatID = id
		}
	}

	setIfEnv(&config.LogFile, "LOG_FILE")

	setIfEnv(&config.Jaeger.Host, "JAEGER_HOST")
	if v := os.Getenv("JAEGER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Jaeger.Port = p
		}
	}
}

// validate собирает ВСЕ недостающие обязательные параметры в одну ошибку,
// чтобы оператор чинил окружение за один заход.
func validate(config *Config) error {
	var missing []string

	checks := []struct {
		name string
		ok   bool
	}{
		{"API_KEY", config.Bybit.APIKey != ""},
		{"API_SECRET", config.Bybit.APISecret != ""},
		{"API_ID", config.Telegram.APIID != 0},
		{"API_HASH", config.Telegram.APIHash != ""},
		{"BOT_USERNAME", config.Telegram.BotUsername != ""},
		{"PHONE_NUMBER", config.Telegram.PhoneNumber != ""},
		{"SESSION_NAME", config.Telegram.SessionName != ""},
	}
	for _, c := range checks {
		if !c.ok {
			missing = append(missing, c.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
