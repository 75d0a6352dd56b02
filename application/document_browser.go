package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"doclib/domain/caml"
	"doclib/domain/contracts"
	"doclib/domain/library"
	"doclib/logging"
)

// DocumentBrowser runs document library browsing sessions over a remote library client.
type DocumentBrowser struct {
	client          contracts.LibraryClient
	fieldCache      contracts.FieldCacheRepository
	sessions        *SessionRegistry
	defaultPageSize int
	logger          *logging.Logger
}

// NewDocumentBrowser creates a document browser with injected collaborators.
func NewDocumentBrowser(
	client contracts.LibraryClient,
	fieldCache contracts.FieldCacheRepository,
	sessions *SessionRegistry,
	defaultPageSize int,
) *DocumentBrowser {
	if defaultPageSize <= 0 {
		defaultPageSize = caml.DefaultPageSize
	}
	return &DocumentBrowser{
		client:          client,
		fieldCache:      fieldCache,
		sessions:        sessions,
		defaultPageSize: defaultPageSize,
		logger:          logging.Default().WithComponent("document_browser"),
	}
}

// ListFields returns column metadata for a list view, served from the field cache when fresh.
func (b *DocumentBrowser) ListFields(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, error) {
	fields, found, err := b.fieldCache.Get(ctx, listTitle, viewName)
	if err != nil {
		b.logger.Warn("Field cache lookup failed", "list", listTitle, "view", viewName, "error", err)
	} else if found {
		return fields, nil
	}

	start := time.Now()
	fields, err = b.client.FetchFieldMetadata(ctx, listTitle, viewName)
	if err != nil {
		return nil, fmt.Errorf("fetch field metadata for %q: %w", listTitle, err)
	}
	b.logger.Performance("fetch_field_metadata", time.Since(start),
		slog.String("list", listTitle), slog.Int("fields", len(fields)))

	if err := b.fieldCache.Save(ctx, listTitle, viewName, fields); err != nil {
		b.logger.Warn("Field cache save failed", "list", listTitle, "view", viewName, "error", err)
	}
	return fields, nil
}

// RefreshFields drops the cached metadata of a list and fetches the view again.
func (b *DocumentBrowser) RefreshFields(ctx context.Context, listTitle, viewName string) ([]library.FieldDescriptor, error) {
	if err := b.fieldCache.Invalidate(ctx, listTitle); err != nil {
		return nil, fmt.Errorf("invalidate field cache for %q: %w", listTitle, err)
	}
	return b.ListFields(ctx, listTitle, viewName)
}

// OpenSession resolves columns, registers a session and loads its first page.
// When the first page fails the session stays registered in errored state and its
// snapshot is returned together with the error.
func (b *DocumentBrowser) OpenSession(ctx context.Context, opts SessionOptions) (SessionView, error) {
	if opts.ListTitle == "" {
		return SessionView{}, fmt.Errorf("open session: %w", contracts.ErrListRequired)
	}
	if opts.Mode == "" {
		opts.Mode = ModeStream
	}
	if opts.PageSize <= 0 {
		opts.PageSize = b.defaultPageSize
	}

	descriptors, err := b.ListFields(ctx, opts.ListTitle, opts.ViewName)
	if err != nil {
		return SessionView{}, fmt.Errorf("open session: %w", err)
	}
	columns := selectColumns(descriptors, opts.Fields)
	if len(opts.Fields) == 0 {
		opts.Fields = library.FieldNames(columns)
	}

	session := NewSession(b.sessions.NewID(), b.client, opts, columns)
	b.sessions.Put(session)
	b.logger.Session("Browse session opened", session.ID(),
		slog.String("list", opts.ListTitle), slog.String("mode", string(opts.Mode)), slog.Int("page_size", opts.PageSize))

	view, err := session.Load(ctx)
	if err != nil {
		b.logger.SessionError("Initial page load failed", err, session.ID())
		return session.Snapshot(), err
	}
	return view, nil
}

// Get returns a session snapshot.
func (b *DocumentBrowser) Get(ctx context.Context, id string) (SessionView, error) {
	session, err := b.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}
	return session.Snapshot(), nil
}

// LoadMore pulls the next page of a session.
func (b *DocumentBrowser) LoadMore(ctx context.Context, id string) (SessionView, error) {
	session, err := b.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}

	start := time.Now()
	view, err := session.Load(ctx)
	if err != nil {
		b.logger.Warn("Load more failed", "session_id", id, "error", err)
		return view, err
	}
	b.logger.Performance("load_more", time.Since(start),
		slog.String("session_id", id), slog.Int("loaded", view.Loaded), slog.Bool("has_more", view.HasMore))
	return view, nil
}

// Sort changes a session's ordering. An empty field clears it.
func (b *DocumentBrowser) Sort(ctx context.Context, id, field string, ascending bool) (SessionView, error) {
	session, err := b.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}
	b.logger.Debug("Sorting session", "session_id", id, "field", field, "ascending", ascending, "mode", string(session.Mode()))
	return session.Sort(ctx, field, ascending)
}

// Filter changes a session's name filter.
func (b *DocumentBrowser) Filter(ctx context.Context, id, text string) (SessionView, error) {
	session, err := b.sessions.Get(id)
	if err != nil {
		return SessionView{}, err
	}
	b.logger.Debug("Filtering session", "session_id", id, "filter", text, "mode", string(session.Mode()))
	return session.Filter(ctx, text)
}

// Close discards a session.
func (b *DocumentBrowser) Close(ctx context.Context, id string) error {
	if err := b.sessions.Delete(id); err != nil {
		return err
	}
	b.logger.Session("Browse session closed", id)
	return nil
}

// selectColumns picks the requested fields in request order, or every visible field.
// Requested names missing from the metadata get a bare text descriptor.
func selectColumns(all []library.FieldDescriptor, requested []string) []library.FieldDescriptor {
	if len(requested) == 0 {
		return library.VisibleFields(all)
	}
	byName := make(map[string]library.FieldDescriptor, len(all))
	for _, f := range all {
		byName[f.InternalName] = f
	}
	out := make([]library.FieldDescriptor, 0, len(requested))
	for _, name := range requested {
		if f, ok := byName[name]; ok {
			out = append(out, f)
			continue
		}
		out = append(out, library.FieldDescriptor{InternalName: name, Title: name, Type: library.FieldTypeText})
	}
	return out
}
