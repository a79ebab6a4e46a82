package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/table"
	"github.com/chybatronik/goUsersTable/internal/validation"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// Output formats of the list command
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

const tabPadding = 2

type listOptions struct {
	search  string
	sort    string
	perPage int
	page    int
	output  string
}

// listOutput is the json/yaml document printed by list. Page is 1-based.
type listOutput struct {
	Users        []models.User   `json:"users" yaml:"users"`
	Search       string          `json:"search" yaml:"search"`
	SortField    table.SortField `json:"sort_field" yaml:"sort_field"`
	SortReversed bool            `json:"sort_reversed" yaml:"sort_reversed"`
	Page         int             `json:"page" yaml:"page"`
	ItemsPerPage int             `json:"items_per_page" yaml:"items_per_page"`
	TotalPages   int             `json:"total_pages" yaml:"total_pages"`
	TotalItems   int             `json:"total_items" yaml:"total_items"`
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the users table",
		Example: `  # First page sorted by name
  userstable list

  # Users from Texas, richest first (balances compare as text)
  userstable list --search texas --sort balance:desc

  # Third page of 20 as YAML
  userstable list --per-page 20 --page 3 --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.search, "search", "", "case-insensitive substring filter")
	cmd.Flags().StringVar(&opts.sort, "sort", string(table.DefaultSortField),
		"sort column and order as field[:asc|:desc]")
	cmd.Flags().IntVar(&opts.perPage, "per-page", table.DefaultItemsPerPage, "items per page (20, 50 or 100)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page to print, starting at 1")
	cmd.Flags().StringVarP(&opts.output, "output", "o", OutputTable, "output format (table, json, yaml)")

	return cmd
}

func runList(cmd *cobra.Command, root *rootOptions, opts *listOptions) error {
	state, err := opts.viewState()
	if err != nil {
		return err
	}
	if err := checkOutputFormat(opts.output); err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), root.logLevel, logging.FormatText, serviceName, root.version)
	src, closeSource := root.newSource(logger)
	defer closeSource()

	if err := src.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	records, err := src.Records()
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	view := table.Derive(records, state)
	logger.Debug("derived page",
		logging.Records(len(records)),
		logging.Origin(string(src.Status().Origin)),
		"rows", len(view.Rows),
	)

	return renderList(cmd.OutOrStdout(), opts.output, view)
}

// viewState builds the table state from the flags. Unlike the controller, --sort sets
// the direction explicitly instead of toggling it.
func (o *listOptions) viewState() (table.ViewState, error) {
	if err := validation.ValidateSearchTerm(o.search); err != nil {
		return table.ViewState{}, fmt.Errorf("invalid --search: %w", err)
	}

	state := table.DefaultState().WithSearchTerm(o.search)

	state, err := state.WithItemsPerPage(o.perPage)
	if err != nil {
		return table.ViewState{}, fmt.Errorf("invalid --per-page: %w", err)
	}

	field, reversed, err := ParseSortFlag(o.sort)
	if err != nil {
		return table.ViewState{}, fmt.Errorf("invalid --sort: %w", err)
	}
	state.SortField = field
	state.SortReversed = reversed

	return state.WithCurrentPage(o.page - 1), nil
}

// ParseSortFlag splits field[:asc|:desc] into a column and a reversed flag
func ParseSortFlag(value string) (table.SortField, bool, error) {
	name, order, _ := strings.Cut(value, ":")

	field, err := table.ParseSortField(name)
	if err != nil {
		return "", false, err
	}

	switch strings.ToLower(order) {
	case "", "asc":
		return field, false, nil
	case "desc":
		return field, true, nil
	default:
		return "", false, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidSortOrder,
			"Sort order must be asc or desc")
	}
}

func checkOutputFormat(format string) error {
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported --output %q (table, json, yaml)", format)
	}
}

func renderList(w io.Writer, format string, view table.View) error {
	switch format {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(newListOutput(view)); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(newListOutput(view)); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return encoder.Close()
	default:
		return renderTable(w, view)
	}
}

func newListOutput(view table.View) listOutput {
	users := view.Rows
	if users == nil {
		users = []models.User{}
	}
	return listOutput{
		Users:        users,
		Search:       view.State.SearchTerm,
		SortField:    view.State.SortField,
		SortReversed: view.State.SortReversed,
		Page:         view.State.CurrentPage + 1,
		ItemsPerPage: view.State.ItemsPerPage,
		TotalPages:   view.TotalPages,
		TotalItems:   view.FilteredCount,
	}
}

func renderTable(w io.Writer, view table.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Title
		if col.Field == view.State.SortField {
			headers[i] += " " + sortIndicator(view.State.SortReversed)
		}
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, u := range view.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.FullName, u.Balance, u.ActiveLabel(), u.Registered, u.State, u.Country)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nCurrent page: %d of %d pages (%d matching records)\n",
		view.State.CurrentPage+1, view.TotalPages, view.FilteredCount)
	return err
}

func sortIndicator(reversed bool) string {
	if reversed {
		return "▲"
	}
	return "▼"
}
