package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Payment  PaymentConfig  `yaml:"payment"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address     string `yaml:"address"`
	SwaggerFile string `yaml:"swagger_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	ReservationTopic string   `yaml:"reservation_topic"`
	GroupID          string   `yaml:"group_id"`
}

// DurationsConfig lists the allowed booking lengths in minutes.
// Weekday keys are lower-case English names ("saturday").
type DurationsConfig struct {
	Default   []int            `yaml:"default"`
	BySegment map[string][]int `yaml:"by_segment"`
	ByWeekday map[string][]int `yaml:"by_weekday"`
}

type BookingConfig struct {
	PaymentTTLMinutes int             `yaml:"payment_ttl_minutes"`
	DraftIdleMinutes  int             `yaml:"draft_idle_minutes"`
	SlotLockSeconds   int             `yaml:"slot_lock_seconds"`
	CourtsCacheTTL    int             `yaml:"courts_cache_ttl_seconds"`
	ResultURL         string          `yaml:"result_url"`
	Durations         DurationsConfig `yaml:"durations"`
}

type WorkerConfig struct {
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

type PaymentConfig struct {
	BaseURL         string `yaml:"base_url"`
	MerchantID      string `yaml:"merchant_id"`
	Password        string `yaml:"password"`
	Currency        string `yaml:"currency"`
	SuccessURL      string `yaml:"success_url"`
	FailURL         string `yaml:"fail_url"`
	NotificationURL string `yaml:"notification_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads the YAML file at path, applies secrets from the
// environment (and a .env file next to the binary, if any) and fills defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("PAYMENT_PASSWORD"); v != "" {
		c.Payment.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

// Validate fills defaults and rejects values the services cannot work with.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.ReservationTopic == "" {
		c.Kafka.ReservationTopic = "reservations"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "courtbooking-notify"
	}
	b := &c.Booking
	if b.PaymentTTLMinutes == 0 {
		b.PaymentTTLMinutes = 15
	}
	if b.DraftIdleMinutes == 0 {
		b.DraftIdleMinutes = 30
	}
	if b.SlotLockSeconds == 0 {
		b.SlotLockSeconds = 10
	}
	if b.CourtsCacheTTL == 0 {
		b.CourtsCacheTTL = 60
	}
	if len(b.Durations.Default) == 0 {
		b.Durations.Default = []int{60, 90, 120}
	}
	if c.Worker.SweepIntervalSeconds == 0 {
		c.Worker.SweepIntervalSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if b.PaymentTTLMinutes < 0 || b.DraftIdleMinutes < 0 || b.SlotLockSeconds < 0 {
		return errors.New("booking timeouts must be positive")
	}
	if _, err := b.DurationPolicy(); err != nil {
		return err
	}
	return nil
}

func (b BookingConfig) PaymentTTL() time.Duration {
	return time.Duration(b.PaymentTTLMinutes) * time.Minute
}

func (b BookingConfig) DraftIdleTTL() time.Duration {
	return time.Duration(b.DraftIdleMinutes) * time.Minute
}

func (b BookingConfig) SlotLockTTL() time.Duration {
	return time.Duration(b.SlotLockSeconds) * time.Second
}

func (b BookingConfig) CourtsCacheDuration() time.Duration {
	return time.Duration(b.CourtsCacheTTL) * time.Second
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepIntervalSeconds) * time.Second
}

func (p PaymentConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// DurationPolicy converts the configured durations into the domain policy.
func (b BookingConfig) DurationPolicy() (domain.DurationPolicy, error) {
	policy := domain.DurationPolicy{
		Default:   b.Durations.Default,
		BySegment: map[domain.Segment][]int{},
		ByWeekday: map[time.Weekday][]int{},
	}
	check := func(durations []int) error {
		for _, d := range durations {
			if d <= 0 || d%domain.CellMinutes != 0 {
				return fmt.Errorf("duration %d is not a positive multiple of %d minutes", d, domain.CellMinutes)
			}
		}
		return nil
	}
	if err := check(b.Durations.Default); err != nil {
		return policy, err
	}
	for name, durations := range b.Durations.BySegment {
		segment, err := domain.ParseSegment(name)
		if err != nil {
			return policy, err
		}
		if err := check(durations); err != nil {
			return policy, err
		}
		policy.BySegment[segment] = durations
	}
	for name, durations := range b.Durations.ByWeekday {
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return policy, fmt.Errorf("unknown weekday %q", name)
		}
		if err := check(durations); err != nil {
			return policy, err
		}
		policy.ByWeekday[day] = durations
	}
	return policy, nil
}
