// Package config загружает конфигурацию сервиса и policy-таблицы.
//
// Порядок приоритета: значения по умолчанию → YAML файл (CONFIG_PATH
// или флаг) → переменные окружения. Пороговые значения правил
// (visa-таймлайны, сроки доставки) — policy, поставляемая снаружи,
// а не зашитая в код агентов.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Config — конфигурация сервиса caseflow.
type Config struct {
	// APIAddr — адрес HTTP API (например, ":8080").
	APIAddr string `yaml:"api_addr"`

	// DatabaseURL — DSN Postgres. Пустое значение — in-memory режим
	// (снапшоты и записи агентов живут только в памяти процесса).
	DatabaseURL string `yaml:"database_url"`

	// AMQPURL — URL RabbitMQ для релея событий. Пустое значение — релей выключен.
	AMQPURL string `yaml:"amqp_url"`

	// RecheckCron — cron-выражение для периодической переоценки
	// дел в статусе AT_RISK. Пустое значение — sweep выключен.
	RecheckCron string `yaml:"recheck_cron"`

	// Policy — пороговые значения бизнес-правил.
	Policy Policy `yaml:"policy"`
}

// Policy — пороговые значения правил агентов и детектора конфликтов.
type Policy struct {
	// SponsoredLocations — локации, где требуется спонсорство визы.
	SponsoredLocations []string `yaml:"sponsored_locations"`

	// SlowVisaNationalities — гражданства с удлинённым сроком визы.
	SlowVisaNationalities []string `yaml:"slow_visa_nationalities"`

	// VisaWeeksSponsoredSlow — недели на визу: спонсируемая локация, медленное гражданство.
	VisaWeeksSponsoredSlow int `yaml:"visa_weeks_sponsored_slow"`

	// VisaWeeksSponsored — недели на визу: спонсируемая локация, остальные.
	VisaWeeksSponsored int `yaml:"visa_weeks_sponsored"`

	// VisaWeeksDefault — недели на визу: прочие локации.
	VisaWeeksDefault int `yaml:"visa_weeks_default"`

	// DeliveryDaysLocal — дни доставки устройства в спонсируемых локациях.
	DeliveryDaysLocal int `yaml:"delivery_days_local"`

	// DeliveryDaysDefault — дни доставки устройства в прочих локациях.
	DeliveryDaysDefault int `yaml:"delivery_days_default"`

	// SeatingETALocal / SeatingETADefault — дни подготовки рабочего места.
	SeatingETALocal   int `yaml:"seating_eta_local"`
	SeatingETADefault int `yaml:"seating_eta_default"`

	// TightSLAWindowDays — зазор (в днях), при котором доставка
	// считается впритык к дате старта.
	TightSLAWindowDays int `yaml:"tight_sla_window_days"`
}

// DefaultPolicy возвращает policy по умолчанию (значения исходных таблиц).
func DefaultPolicy() Policy {
	return Policy{
		SponsoredLocations:     []string{"AE", "UAE"},
		SlowVisaNationalities:  []string{"PK", "BD", "NP"},
		VisaWeeksSponsoredSlow: 8,
		VisaWeeksSponsored:     4,
		VisaWeeksDefault:       2,
		DeliveryDaysLocal:      3,
		DeliveryDaysDefault:    7,
		SeatingETALocal:        2,
		SeatingETADefault:      5,
		TightSLAWindowDays:     1,
	}
}

// IsSponsoredLocation проверяет, требует ли локация спонсорства визы.
// Локация — свободный текст ("Dubai, AE"), сверяем по токенам.
func (p Policy) IsSponsoredLocation(location string) bool {
	tokens := strings.FieldsFunc(location, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, token := range tokens {
		if containsFold(p.SponsoredLocations, token) {
			return true
		}
	}
	return false
}

// IsSlowVisaNationality проверяет, попадает ли гражданство в медленную группу.
func (p Policy) IsSlowVisaNationality(nationality string) bool {
	return containsFold(p.SlowVisaNationalities, nationality)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		APIAddr:     ":8080",
		DatabaseURL: "",
		AMQPURL:     "",
		RecheckCron: "",
		Policy:      DefaultPolicy(),
	}
}

// Load читает конфигурацию: defaults → YAML файл (если path не пустой) → env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(blob, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv накладывает переменные окружения поверх конфигурации.
func (c *Config) applyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		c.APIAddr = ":" + v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		c.AMQPURL = v
	}
	if v := os.Getenv("RECHECK_CRON"); v != "" {
		c.RecheckCron = v
	}
}
