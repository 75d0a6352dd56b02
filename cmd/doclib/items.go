package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"doclib/application"
	"doclib/domain/library"
)

// itemsFlags are the flags of the items command.
type itemsFlags struct {
	view     string
	mode     string
	pageSize int
	pages    int
	sort     string
	desc     bool
	filter   string
	fields   []string
}

var itemsOpts itemsFlags

var itemsCmd = &cobra.Command{
	Use:   "items <list>",
	Short: "Page through the documents of a list",
	Long: "Opens a browse session on the list and loads up to --pages pages (0 loads everything).\n" +
		"In stream mode sort and filter run on the server; in offset mode they run locally.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := itemsOpts.sessionOptions(args[0])
		if err != nil {
			return err
		}

		a, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		browser := a.stack.Browser
		view, err := browser.OpenSession(ctx, opts)
		if err != nil {
			return err
		}
		defer func() { _ = browser.Close(ctx, view.ID) }()

		view, err = loadPages(ctx, browser, view, itemsOpts.pages)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, itemsResult{
			List:    view.ListTitle,
			Mode:    string(view.Mode),
			Pages:   view.Pages,
			Loaded:  view.Loaded,
			HasMore: view.HasMore,
			Items:   view.Items,
		})
	},
}

func init() {
	f := itemsCmd.Flags()
	f.StringVar(&itemsOpts.view, "view", "", "view whose columns are selected")
	f.StringVar(&itemsOpts.mode, "mode", "stream", "paging mode: stream or offset")
	f.IntVar(&itemsOpts.pageSize, "page-size", 0, "items per page (DOCLIB_DEFAULT_PAGE_SIZE when 0)")
	f.IntVar(&itemsOpts.pages, "pages", 1, "pages to load, 0 for all")
	f.StringVar(&itemsOpts.sort, "sort", "", "field to sort by")
	f.BoolVar(&itemsOpts.desc, "desc", false, "sort descending")
	f.StringVar(&itemsOpts.filter, "filter", "", "case-insensitive name filter")
	f.StringSliceVar(&itemsOpts.fields, "fields", nil, "fields to select (view columns when empty)")
}

type itemsResult struct {
	List    string         `json:"list" yaml:"list"`
	Mode    string         `json:"mode" yaml:"mode"`
	Pages   int            `json:"pages" yaml:"pages"`
	Loaded  int            `json:"loaded" yaml:"loaded"`
	HasMore bool           `json:"has_more" yaml:"has_more"`
	Items   []library.Item `json:"items" yaml:"items"`
}

func (f itemsFlags) sessionOptions(list string) (application.SessionOptions, error) {
	mode, err := application.ParseSessionMode(f.mode)
	if err != nil {
		return application.SessionOptions{}, err
	}
	if f.pages < 0 {
		return application.SessionOptions{}, fmt.Errorf("--pages must be zero or positive")
	}

	opts := application.SessionOptions{
		ListTitle: list,
		ViewName:  f.view,
		Mode:      mode,
		Fields:    f.fields,
		PageSize:  f.pageSize,
		Filter:    f.filter,
	}
	if f.sort != "" {
		opts.Sort = &application.SortSpec{Field: f.sort, Ascending: !f.desc}
	}
	return opts, nil
}

// pager is the part of the document browser loadPages drives.
type pager interface {
	LoadMore(ctx context.Context, id string) (application.SessionView, error)
}

// loadPages keeps loading until limit pages are loaded or the session is exhausted.
// A limit of 0 loads everything.
func loadPages(ctx context.Context, p pager, view application.SessionView, limit int) (application.SessionView, error) {
	for view.HasMore && (limit == 0 || view.Pages < limit) {
		next, err := p.LoadMore(ctx, view.ID)
		if err != nil {
			return view, fmt.Errorf("load page %d: %w", view.Pages+1, err)
		}
		view = next
	}
	return view, nil
}
