package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "TOKEN_TTL", "ENABLE_REGISTRATION", "CORS_ORIGINS_OFFLINE"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, ModeOffline, c.Mode)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 7*24*time.Hour, c.TokenTTL)
	assert.True(t, c.EnableRegistration)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, c.CORSOrigins())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("ENABLE_REGISTRATION", "")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("RUBRIC_PATH", "rubrics/")
	t.Setenv("ADMIN_USER", "root")

	c := FromEnv()
	assert.Equal(t, ModeOnline, c.Mode)
	assert.Equal(t, 90*time.Minute, c.TokenTTL)
	assert.False(t, c.EnableRegistration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins())
	assert.Equal(t, "rubrics/", c.RubricPath)
	assert.Equal(t, "root", c.AdminUser)
	assert.Empty(t, c.AdminPassHash)
}
