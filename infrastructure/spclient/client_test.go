package spclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclib/domain/library"
	"doclib/domain/paging"
)

const site = "https://contoso.sharepoint.com/sites/team/"

func TestItemsEndpoint(t *testing.T) {
	first := itemsEndpoint(site, paging.ItemsRequest{ListTitle: "Shared Documents", Fields: []string{"Status", "Editor", "Id", "Status"}, Top: 50})

	u, err := url.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, "/sites/team/_api/web/lists/GetByTitle('Shared Documents')/items", u.Path)
	q := u.Query()
	assert.Equal(t, "Id,FileLeafRef,FileRef,Modified,Editor/Title,File_x0020_Size,Status", q.Get("$select"))
	assert.Equal(t, "Editor", q.Get("$expand"))
	assert.Equal(t, "50", q.Get("$top"))
	assert.Equal(t, "Id", q.Get("$orderby"))
	assert.Empty(t, q.Get("$skiptoken"))

	next := itemsEndpoint(site, paging.ItemsRequest{ListTitle: "Docs", Top: 50, Skip: 50, AfterID: 87})
	u, err = url.Parse(next)
	require.NoError(t, err)
	assert.Equal(t, "Paged=TRUE&p_ID=87", u.Query().Get("$skiptoken"))
}

func TestListEndpoint_EscapesQuotes(t *testing.T) {
	assert.Equal(t,
		"https://contoso.sharepoint.com/sites/team/_api/web/lists/GetByTitle('Bob%27%27s%20Files')",
		listEndpoint(site, "Bob's Files"))
}

func TestStreamEndpoint(t *testing.T) {
	base := "https://contoso.sharepoint.com/sites/team/_api/web/lists/GetByTitle('Docs')/RenderListDataAsStream"
	assert.Equal(t, base, streamEndpoint(site, "Docs", ""))
	assert.Equal(t, base+"?Paged=TRUE&p_ID=30", streamEndpoint(site, "Docs", "?Paged=TRUE&p_ID=30"))
	assert.Equal(t, base+"?Paged=TRUE&p_ID=30", streamEndpoint(site, "Docs", "Paged=TRUE&p_ID=30"))
}

func TestViewFieldsEndpoint(t *testing.T) {
	assert.Contains(t, viewFieldsEndpoint(site, "Docs", ""), "/GetByTitle('Docs')/DefaultView/ViewFields")
	assert.Contains(t, viewFieldsEndpoint(site, "Docs", "By Owner"), "/Views/GetByTitle('By%20Owner')/ViewFields")
}

func TestStreamRequestBody(t *testing.T) {
	body, err := streamRequestBody(`<View><RowLimit Paged="TRUE">10</RowLimit></View>`)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, `<View><RowLimit Paged="TRUE">10</RowLimit></View>`, decoded["parameters"]["ViewXml"])
	assert.Equal(t, float64(2), decoded["parameters"]["RenderOptions"])
}

func TestDecodeCollection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"nometadata", `{"value":[{"Id":1},{"Id":2}]}`, 2},
		{"verbose", `{"d":{"results":[{"Id":1}]}}`, 1},
		{"bare array", `[{"Id":1},{"Id":2},{"Id":3}]`, 3},
		{"empty value", `{"value":[]}`, 0},
		{"no collection", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeCollection[library.RawRecord]([]byte(tt.body))
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}

	_, err := DecodeCollection[library.RawRecord]([]byte("  "))
	assert.Error(t, err)
	_, err = DecodeCollection[library.RawRecord]([]byte("<html>"))
	assert.Error(t, err)
}

func TestDecodeRenderListData(t *testing.T) {
	body := `{"Row":[{"ID":"1","FileLeafRef":"a.docx","Editor":[{"title":"Ana"}]}],"FirstRow":1,"LastRow":1,"NextHref":"?Paged=TRUE&p_ID=1"}`
	resp, err := DecodeRenderListData([]byte(body))
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "a.docx", resp.Records[0]["FileLeafRef"])
	assert.Equal(t, "?Paged=TRUE&p_ID=1", resp.NextCursor)

	last, err := DecodeRenderListData([]byte(`{"d":{"Row":[],"FirstRow":31,"LastRow":30}}`))
	require.NoError(t, err)
	assert.Empty(t, last.Records)
	assert.NotNil(t, last.Records)
	assert.Empty(t, last.NextCursor)

	_, err = DecodeRenderListData([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeViewFields(t *testing.T) {
	order, err := DecodeViewFields([]byte(`{"Items":["DocIcon","LinkFilename","Modified"],"SchemaXml":"<FieldRef />"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"DocIcon", "LinkFilename", "Modified"}, order)

	order, err = DecodeViewFields([]byte(`{"d":{"Items":{"results":["LinkFilename","Editor"]}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"LinkFilename", "Editor"}, order)
}

func TestToFieldDescriptorsAndViewOrder(t *testing.T) {
	fields := toFieldDescriptors([]FieldApiData{
		{InternalName: "Modified", Title: "Modified", TypeAsString: "DateTime", ReadOnlyField: true},
		{InternalName: "Editor", Title: "Modified By", TypeAsString: "User"},
		{InternalName: "LinkFilename", Title: "", TypeAsString: "Computed"},
		{InternalName: "ContentTypeId", TypeAsString: "ContentTypeId", Hidden: true},
		{InternalName: "Tags", Title: "Tags", TypeAsString: "LookupMulti"},
	})
	require.Len(t, fields, 5)
	assert.Equal(t, library.FieldTypeDateTime, fields[0].Type)
	assert.True(t, fields[0].ReadOnly)
	assert.Equal(t, "LinkFilename", fields[2].Title, "title falls back to internal name")
	assert.Equal(t, library.FieldTypeUnknown, fields[2].Type)
	assert.Equal(t, "Computed", fields[2].RawType)
	assert.True(t, fields[4].IsMulti())

	ordered := orderByView(fields, []string{"LinkFilename", "Missing", "Editor", "Modified"})
	assert.Equal(t, []string{"LinkFilename", "Editor", "Modified"}, library.FieldNames(ordered))

	visible := orderByView(fields, nil)
	assert.Equal(t, []string{"Modified", "Editor", "LinkFilename", "Tags"}, library.FieldNames(visible))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/Shared%20Documents/a.docx",
		joinURL("https://contoso.sharepoint.com/sites/team", "/sites/team/Shared Documents/a.docx"))
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/x", joinURL("https://contoso.sharepoint.com/sites/team", "x"))
}

func TestRateLimiter_BackoffBlocksUntilWindowEnds(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1000, Burst: 10})
	limiter.Backoff(30 * time.Millisecond)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestRateLimiter_WaitHonorsCancellation(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{})
	limiter.Backoff(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}

func TestRateLimiter_BackoffNeverShortens(t *testing.T) {
	limiter := NewRateLimiter(DefaultRateLimit)
	limiter.Backoff(time.Minute)
	long := limiter.RetryAt()
	limiter.Backoff(time.Second)
	assert.Equal(t, long, limiter.RetryAt())
}

func TestIsThrottled(t *testing.T) {
	assert.True(t, isThrottled(errors.New("unable to request api: 429 Too Many Requests")))
	assert.True(t, isThrottled(errors.New("503 Server Unavailable")))
	assert.False(t, isThrottled(errors.New("404 Not Found")))
	assert.False(t, isThrottled(nil))
}
