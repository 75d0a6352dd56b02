package factories

import (
	"fmt"

	"doclib/application"
	"doclib/database"
	"doclib/infrastructure/config"
	"doclib/infrastructure/repositories"
	"doclib/infrastructure/spclient"
	"doclib/spauth"
)

// BrowserStack is the wired document browser and the collaborators callers may need directly.
type BrowserStack struct {
	Client     *spclient.Client
	FieldCache *repositories.FieldCacheRepository
	Sessions   *application.SessionRegistry
	Browser    *application.DocumentBrowser
}

// NewBrowserStack authenticates against SharePoint and wires the browser over db.
func NewBrowserStack(cfg *config.AppConfig, auth spauth.Config, db *database.Database) (*BrowserStack, error) {
	authClient, err := spauth.NewClient(auth)
	if err != nil {
		return nil, fmt.Errorf("create sharepoint auth client: %w", err)
	}

	limiter := spclient.NewRateLimiter(spclient.RateLimitConfig{
		RequestsPerSecond: cfg.Browse.RequestsPerSecond,
		Burst:             cfg.Browse.Burst,
	})
	client := spclient.NewClient(authClient, limiter)

	return newStack(cfg.Browse, client, db), nil
}

func newStack(browse *config.BrowseConfig, client *spclient.Client, db *database.Database) *BrowserStack {
	fieldCache := repositories.NewFieldCacheRepository(db, browse.FieldCacheTTL)
	sessions := application.NewSessionRegistry(browse.SessionTTL)

	return &BrowserStack{
		Client:     client,
		FieldCache: fieldCache,
		Sessions:   sessions,
		Browser:    application.NewDocumentBrowser(client, fieldCache, sessions, browse.DefaultPageSize),
	}
}
