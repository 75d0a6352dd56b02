package factories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclib/database"
	"doclib/infrastructure/config"
	"doclib/logging"
	"doclib/spauth"
)

func TestNewBrowserStack(t *testing.T) {
	// Arrange
	dbCfg := database.Config{
		Path:            filepath.Join(t.TempDir(), "stack.db"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		BusyTimeoutMs:   1000,
		EnableWAL:       true,
	}
	db, err := database.New(dbCfg, logging.NewLogger(&logging.Config{Output: "discard"}))
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.AppConfig{Browse: &config.BrowseConfig{
		DefaultPageSize:   25,
		SessionTTL:        time.Minute,
		FieldCacheTTL:     time.Minute,
		RequestsPerSecond: 5,
		Burst:             5,
	}}
	auth := spauth.Config{
		Strategy:     spauth.StrategyAddin,
		SiteURL:      "https://contoso.sharepoint.com/sites/team",
		ClientID:     "client",
		ClientSecret: "secret",
	}

	// Act
	stack, err := NewBrowserStack(cfg, auth, db)

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, stack.Browser)
	assert.NotNil(t, stack.FieldCache)
	assert.Equal(t, 0, stack.Sessions.Count())
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/Shared%20Documents/a.docx",
		stack.Client.AbsoluteURL("/sites/team/Shared Documents/a.docx"))
}

func TestNewBrowserStack_InvalidAuth(t *testing.T) {
	cfg := &config.AppConfig{Browse: &config.BrowseConfig{}}
	_, err := NewBrowserStack(cfg, spauth.Config{Strategy: spauth.StrategyAddin}, nil)
	assert.Error(t, err)
}
