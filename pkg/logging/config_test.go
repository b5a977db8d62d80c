package logging

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromViper(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "DEBUG")
	v.Set("logging.disableConsoleOutput", true)
	v.Set("logging.maxsize", 10)

	c, err := NewConfig(WithViper(v))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, LevelDebug, c.Level)
	assert.True(t, c.DisableConsoleOutput)
	assert.Equal(t, 10, c.MaxSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "zero config is valid", mutate: func(c *Config) {}},
		{name: "negative maxsize", mutate: func(c *Config) { c.MaxSize = -1 }, wantErr: true},
		{name: "negative maxbackups", mutate: func(c *Config) { c.MaxBackups = -2 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Level = "NOISY" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithViperNil(t *testing.T) {
	_, err := NewConfig(WithViper(nil))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	c.Filename = t.TempDir() + "/test.log"
	c.DisableConsoleOutput = true

	logger, err := NewLogger(c)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
}
