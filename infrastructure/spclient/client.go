package spclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/api"

	"doclib/domain/contracts"
	"doclib/domain/library"
	"doclib/domain/paging"
	"doclib/logging"
)

// nometadataHeaders ask SharePoint for the compact JSON shape.
var nometadataHeaders = map[string]string{
	"Accept":       "application/json;odata=nometadata",
	"Content-Type": "application/json;odata=nometadata",
}

// Client wraps the Gosip API client to provide document library retrieval.
// Item and stream pages go through the raw HTTP client; field metadata uses the fluent API.
type Client struct {
	gosipAPI   *api.SP         // Fluent Gosip API client
	authClient *gosip.SPClient // Authenticated client for direct HTTP calls
	limiter    *RateLimiter
	logger     *logging.Logger
}

var _ contracts.LibraryClient = (*Client)(nil)

// NewClient creates a SharePoint library client. A nil limiter uses DefaultRateLimit.
func NewClient(authClient *gosip.SPClient, limiter *RateLimiter) *Client {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit)
	}
	return &Client{
		gosipAPI:   api.NewSP(authClient),
		authClient: authClient,
		limiter:    limiter,
		logger:     logging.Default().WithComponent("sharepoint_client"),
	}
}

func (c *Client) siteURL() string {
	return c.authClient.AuthCnfg.GetSiteURL()
}

// AbsoluteURL resolves a server-relative path such as FileRef against the site.
func (c *Client) AbsoluteURL(serverRelative string) string {
	if serverRelative == "" {
		return ""
	}
	return joinURL(c.siteURL(), serverRelative)
}

func (c *Client) requestConfig(ctx context.Context) *api.RequestConfig {
	return &api.RequestConfig{Context: ctx, Headers: nometadataHeaders}
}

// throttled wraps one remote call with pacing and throttling backoff.
func (c *Client) throttled(ctx context.Context, op string, call func() ([]byte, error)) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	start := time.Now()
	data, err := call()
	if err != nil {
		if isThrottled(err) {
			c.limiter.Backoff(0)
			c.logger.Warn("SharePoint throttled request", "operation", op, "retry_at", c.limiter.RetryAt())
		}
		return nil, err
	}
	c.logger.SharePoint("SharePoint request completed", "operation", op,
		"duration_ms", time.Since(start).Milliseconds(), "bytes", len(data))
	return data, nil
}

// FetchItems implements paging.ItemsFetcher against the REST items endpoint.
func (c *Client) FetchItems(ctx context.Context, req paging.ItemsRequest) ([]library.RawRecord, error) {
	endpoint := itemsEndpoint(c.siteURL(), req)
	httpClient := api.NewHTTPClient(c.authClient)

	data, err := c.throttled(ctx, "items", func() ([]byte, error) {
		return httpClient.Get(endpoint, c.requestConfig(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("get items of %q: %w", req.ListTitle, err)
	}

	records, err := DecodeCollection[library.RawRecord](data)
	if err != nil {
		return nil, fmt.Errorf("decode items of %q: %w", req.ListTitle, err)
	}
	c.logger.Debug("Fetched items page", "list", req.ListTitle, "after_id", req.AfterID, "count", len(records))
	return records, nil
}

// FetchStream implements paging.StreamFetcher against RenderListDataAsStream.
func (c *Client) FetchStream(ctx context.Context, req paging.StreamRequest) (paging.StreamResponse, error) {
	body, err := streamRequestBody(req.ViewXML)
	if err != nil {
		return paging.StreamResponse{}, fmt.Errorf("encode render request: %w", err)
	}
	endpoint := streamEndpoint(c.siteURL(), req.ListTitle, req.Cursor)
	httpClient := api.NewHTTPClient(c.authClient)

	data, err := c.throttled(ctx, "render_list_data", func() ([]byte, error) {
		return httpClient.Post(endpoint, bytes.NewReader(body), c.requestConfig(ctx))
	})
	if err != nil {
		return paging.StreamResponse{}, fmt.Errorf("render list data of %q: %w", req.ListTitle, err)
	}

	resp, err := DecodeRenderListData(data)
	if err != nil {
		return paging.StreamResponse{}, err
	}
	c.logger.Debug("Fetched stream page", "list", req.ListTitle, "count", len(resp.Records), "has_next", resp.NextCursor != "")
	return resp, nil
}

// FetchFieldMetadata returns the columns of a view in view order.
// When the view's column list cannot be read, all visible fields are returned.
func (c *Client) FetchFieldMetadata(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	sp := c.gosipAPI.Conf(c.requestConfig(ctx))
	res, err := sp.Web().Lists().GetByTitle(listTitle).Fields().Select(FieldSelect).Get()
	if err != nil {
		return nil, fmt.Errorf("get fields of %q: %w", listTitle, err)
	}

	var fieldsData []FieldApiData
	if err := json.Unmarshal(res.Normalized(), &fieldsData); err != nil {
		return nil, fmt.Errorf("decode fields of %q: %w", listTitle, err)
	}
	fields := toFieldDescriptors(fieldsData)

	httpClient := api.NewHTTPClient(c.authClient)
	endpoint := viewFieldsEndpoint(c.siteURL(), listTitle, viewName)
	data, err := c.throttled(ctx, "view_fields", func() ([]byte, error) {
		return httpClient.Get(endpoint, c.requestConfig(ctx))
	})
	if err != nil {
		c.logger.Warn("Failed to read view fields, using all visible fields", "list", listTitle, "view", viewName, "error", err.Error())
		return library.VisibleFields(fields), nil
	}
	order, err := DecodeViewFields(data)
	if err != nil {
		c.logger.Warn("Failed to decode view fields, using all visible fields", "list", listTitle, "view", viewName, "error", err.Error())
		return library.VisibleFields(fields), nil
	}

	return orderByView(fields, order), nil
}
