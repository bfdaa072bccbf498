package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
clickhouse:
  host: localhost
`

func TestParse_AppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "emissions.readings", c.Kafka.ReadingsTopic)
	assert.Equal(t, "emissions.anomalies", c.Kafka.AlertsTopic)
	assert.Equal(t, 2.0, c.Analytics.DetectThreshold)
	assert.Equal(t, 3.0, c.Analytics.HighThreshold)
	assert.Equal(t, "@every 15m", c.Analytics.RefreshCron)
	assert.Equal(t, 5*time.Second, c.TextGen.Timeout)
	assert.Equal(t, "gpt-3.5-turbo", c.TextGen.Model)
}

func TestParse_Validation(t *testing.T) {
	cases := map[string]string{
		"missing environment": "clickhouse:\n  host: localhost\n",
		"missing clickhouse":  "environment: test\n",
		"kafka without brokers": minimalYAML + "kafka:\n  enabled: true\n",
		"inverted thresholds": minimalYAML + "analytics:\n  detect_threshold: 3\n  high_threshold: 2\n",
		"textgen without key":  minimalYAML + "textgen:\n  enabled: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	env := map[string]string{
		"ECOTRACK_ENV":    "staging",
		"OPENAI_API_KEY":  "sk-openai",
		"TEXTGEN_API_KEY": "sk-generic",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"REDIS_ADDR":      "redis:6379",
		"PORT":            "9090",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	require.NoError(t, c.applyEnv(lookup))

	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, "sk-generic", c.TextGen.APIKey)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, 9090, c.Server.Port)

	env["PORT"] = "not-a-port"
	assert.Error(t, c.applyEnv(lookup))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
