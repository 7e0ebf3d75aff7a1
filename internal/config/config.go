// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timetracker/internal/report"
)

const (
	defaultPort     = "8080"
	defaultTimezone = "Europe/Warsaw"
)

// ReportSettings - настройки отчетов из YAML-файла (REPORT_SETTINGS_FILE).
// Переменные окружения имеют приоритет над файлом.
type ReportSettings struct {
	TemplateDirs    []string      `yaml:"template_dirs"`
	TemplateName    string        `yaml:"template_name"`
	TemplateSheet   string        `yaml:"template_sheet"`
	TemplateDataRow int           `yaml:"template_data_row"`
	MaxColumnWidth  int           `yaml:"max_column_width"`
	CompanySheet    *bool         `yaml:"company_sheet"`
	EmployeeSheet   *bool         `yaml:"employee_sheet"`
	Colors          report.Colors `yaml:"colors"`
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	AppEnv      string
	Port        string
	// AuthSecret - ключ HMAC для заголовка X-Worklog-Auth.
	AuthSecret         string
	CORSAllowedOrigins []string
	LogFile            string

	TelegramToken    string
	AccountingChatID int64

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ReportTimezone     string
	Location           *time.Location
	ReportSettingsFile string
	Report             ReportSettings
}

// LoadConfig загружает конфигурацию из переменных окружения и файла настроек отчетов.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AppEnv:             os.Getenv("ENV"),
		Port:               os.Getenv("PORT"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		LogFile:            os.Getenv("LOG_FILE"),
		TelegramToken:      os.Getenv("TELEGRAM_APITOKEN"),
		ReportTimezone:     os.Getenv("REPORT_TIMEZONE"),
		ReportSettingsFile: os.Getenv("REPORT_SETTINGS_FILE"),
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	} else {
		cfg.CORSAllowedOrigins = []string{"https://*", "http://*"}
	}

	if chatID := os.Getenv("ACCOUNTING_CHAT_ID"); chatID != "" {
		var err error
		cfg.AccountingChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Printf("Предупреждение: не удалось прочитать ACCOUNTING_CHAT_ID: %v. Установлено в 0.", err)
			cfg.AccountingChatID = 0
		}
	}

	if cfg.ReportTimezone == "" {
		cfg.ReportTimezone = defaultTimezone
	}
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("некорректный REPORT_TIMEZONE %q: %w", cfg.ReportTimezone, err)
	}
	cfg.Location = loc

	if cfg.ReportSettingsFile != "" {
		settings, err := LoadReportSettings(cfg.ReportSettingsFile)
		if err != nil {
			return nil, err
		}
		cfg.Report = *settings
	}
	if dirs := os.Getenv("REPORT_TEMPLATE_DIRS"); dirs != "" {
		cfg.Report.TemplateDirs = filepath.SplitList(dirs)
	}
	if name, ok := os.LookupEnv("REPORT_TEMPLATE_NAME"); ok {
		cfg.Report.TemplateName = strings.TrimSpace(name)
	}

	if cfg.AuthSecret == "" {
		log.Println("Критическая ошибка: AUTH_SECRET не установлен. Запросы к API не пройдут авторизацию.")
	}
	if cfg.TelegramToken == "" || cfg.AccountingChatID == 0 {
		log.Println("Предупреждение: TELEGRAM_APITOKEN или ACCOUNTING_CHAT_ID не установлены. Отправка отчетов в бухгалтерию отключена.")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBPassword, _ = parsedURL.User.Password()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}

// LoadReportSettings читает YAML-файл настроек отчетов.
func LoadReportSettings(path string) (*ReportSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл настроек отчетов %s: %w", path, err)
	}
	var settings ReportSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("некорректный YAML в %s: %w", path, err)
	}
	return &settings, nil
}

// ReportOptions собирает параметры сервиса отчетов. Сводные листы включены по умолчанию.
func (c *Config) ReportOptions() report.ServiceOptions {
	return report.ServiceOptions{
		Location:      c.Location,
		CompanySheet:  boolOr(c.Report.CompanySheet, true),
		EmployeeSheet: boolOr(c.Report.EmployeeSheet, true),
		AssemblerConfig: report.AssemblerConfig{
			TemplateDirs:    c.Report.TemplateDirs,
			TemplateName:    c.Report.TemplateName,
			TemplateSheet:   c.Report.TemplateSheet,
			TemplateDataRow: c.Report.TemplateDataRow,
			MaxColumnWidth:  c.Report.MaxColumnWidth,
			Colors:          c.Report.Colors,
		},
	}
}

// TelegramEnabled reports whether report delivery to the accounting chat is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.AccountingChatID != 0
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
