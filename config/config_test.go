package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  port: 5432
  user: app
  password: secret
  name: courts
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 15*time.Minute, cfg.Booking.PaymentTTL())
	assert.Equal(t, 30*time.Minute, cfg.Booking.DraftIdleTTL())
	assert.Equal(t, 10*time.Second, cfg.Booking.SlotLockTTL())
	assert.Equal(t, time.Minute, cfg.Worker.SweepInterval())
	assert.Equal(t, []int{60, 90, 120}, cfg.Booking.Durations.Default)
	assert.Equal(t, "reservations", cfg.Kafka.ReservationTopic)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=courts sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("PAYMENT_PASSWORD", "pay-secret")
	t.Setenv("REDIS_PASSWORD", "redis-secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	path := writeConfig(t, `
database:
  password: from-file
payment:
  password: from-file
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "pay-secret", cfg.Payment.Password)
	assert.Equal(t, "redis-secret", cfg.Redis.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: [broken"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, `
booking:
  durations:
    default: [45]
`))
	assert.ErrorContains(t, err, "invalid config")
}

func TestBookingConfig_DurationPolicy(t *testing.T) {
	b := BookingConfig{Durations: DurationsConfig{
		Default:   []int{60, 90},
		BySegment: map[string][]int{"profe": {60}},
		ByWeekday: map[string][]int{"Saturday": {120}},
	}}

	policy, err := b.DurationPolicy()

	require.NoError(t, err)
	assert.Equal(t, []int{60}, policy.Allowed(domain.SegmentInstructor, time.Monday))
	assert.Equal(t, []int{120}, policy.Allowed(domain.SegmentPublic, time.Saturday))

	testCases := []struct {
		name      string
		durations DurationsConfig
	}{
		{name: "Unknown segment", durations: DurationsConfig{BySegment: map[string][]int{"vip": {60}}}},
		{name: "Unknown weekday", durations: DurationsConfig{ByWeekday: map[string][]int{"domingo": {60}}}},
		{name: "Not on cell boundary", durations: DurationsConfig{ByWeekday: map[string][]int{"monday": {50}}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BookingConfig{Durations: tc.durations}.DurationPolicy()
			assert.Error(t, err)
		})
	}
}
