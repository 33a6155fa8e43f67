package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taqnia-dev/adminctl/internal/api"
	"github.com/taqnia-dev/adminctl/internal/cli/app"
	"github.com/taqnia-dev/adminctl/internal/cli/output"
	"github.com/taqnia-dev/adminctl/internal/listing"
)

// resourceDef describes how one kind of record is listed and shown.
type resourceDef[T any] struct {
	name     string
	singular string
	aliases  []string

	id      func(T) string
	headers []string
	row     func(T) []string
	search  func(T) []string
	sorts   map[string]listing.Compare[T]

	defaultSort string
	defaultDir  listing.Direction
}

func (d resourceDef[T]) collection(items []T) *listing.Collection[T] {
	opts := []listing.Option[T]{listing.WithSearch(d.search)}
	for key, cmp := range d.sorts {
		opts = append(opts, listing.WithSortKey(key, cmp))
	}
	if d.defaultSort != "" {
		opts = append(opts, listing.WithDefaultSort[T](d.defaultSort, d.defaultDir))
	}
	return listing.New(items, d.id, opts...)
}

func (d resourceDef[T]) table(items []T) func() output.Rows {
	return func() output.Rows {
		rows := output.Rows{Headers: d.headers}
		for _, item := range items {
			rows.Add(d.row(item)...)
		}
		return rows
	}
}

type listOptions struct {
	query string
	sort  string
	desc  bool
}

type deleteManyOptions struct {
	query string
	all   bool
	yes   bool
}

// newReaderCmd builds the command group for a read-only resource.
func newReaderCmd[T any](load AppLoader, def resourceDef[T], reader func(*api.API) *api.Reader[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     def.name,
		Aliases: def.aliases,
		Short:   fmt.Sprintf("Manage %s", def.name),
	}

	var opts listOptions
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   fmt.Sprintf("List %s", def.name),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runList(cmd.Context(), a, def, reader(a.API), opts)
		},
	}
	ls.Flags().StringVarP(&opts.query, "query", "q", "", "Only show records containing this text")
	ls.Flags().StringVar(&opts.sort, "sort", "", "Sort key ("+strings.Join(def.collection(nil).SortKeys(), ", ")+")")
	ls.Flags().BoolVar(&opts.desc, "desc", false, "Sort in descending order")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show a %s", def.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runGet(cmd.Context(), a, def, reader(a.API), args[0])
		},
	}

	cmd.AddCommand(ls, get)
	return cmd
}

// newResourceCmd builds the command group for a resource with full CRUD.
func newResourceCmd[T, C, U any](load AppLoader, def resourceDef[T], res func(*api.API) *api.Resource[T, C, U]) *cobra.Command {
	cmd := newReaderCmd(load, def, func(a *api.API) *api.Reader[T] {
		return res(a).Reader
	})

	var data, file string
	create := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s from JSON or YAML", def.singular),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			return runCreate(cmd.Context(), a, def, res(a.API), raw)
		},
	}
	create.Flags().StringVarP(&data, "data", "d", "", "Record fields as inline JSON or YAML")
	create.Flags().StringVarP(&file, "file", "f", "", "Read record fields from a file ('-' for stdin)")

	var patchData, patchFile string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Change fields of a %s", def.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), patchData, patchFile)
			if err != nil {
				return err
			}
			return runUpdate(cmd.Context(), a, def, res(a.API), args[0], raw)
		},
	}
	update.Flags().StringVarP(&patchData, "data", "d", "", "Changed fields as inline JSON or YAML")
	update.Flags().StringVarP(&patchFile, "file", "f", "", "Read changed fields from a file ('-' for stdin)")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", def.singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runDelete(cmd.Context(), a, def, res(a.API), args[0], yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	var many deleteManyOptions
	deleteMany := &cobra.Command{
		Use:   "delete-many [id...]",
		Short: fmt.Sprintf("Delete several %s at once", def.name),
		Long: fmt.Sprintf(`Delete several %s with a single request.

Records are selected by id, by --query (every record the query matches) or
with --all.`, def.name),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return runDeleteMany(cmd.Context(), a, def, res(a.API), args, many)
		},
	}
	deleteMany.Flags().StringVarP(&many.query, "query", "q", "", "Select every record containing this text")
	deleteMany.Flags().BoolVar(&many.all, "all", false, "Select every record")
	deleteMany.Flags().BoolVarP(&many.yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.AddCommand(create, update, del, deleteMany)
	return cmd
}

func runList[T any](ctx context.Context, a *app.App, def resourceDef[T], reader *api.Reader[T], opts listOptions) error {
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	items, err := reader.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", def.name, err)
	}

	coll := def.collection(items)
	if opts.sort != "" {
		dir := listing.Ascending
		if opts.desc {
			dir = listing.Descending
		}
		if err := coll.SortBy(opts.sort, dir); err != nil {
			return err
		}
	} else if opts.desc {
		// --desc alone flips the default order
		key, _ := coll.Sort()
		if key != "" {
			if err := coll.ToggleSort(key); err != nil {
				return err
			}
		}
	}
	coll.SetQuery(opts.query)
	view := coll.View()

	if a.Format != output.Table {
		return a.Render(view, nil)
	}

	if len(view) == 0 {
		if opts.query != "" {
			a.Printf("No %s match %q.\n", def.name, opts.query)
		} else {
			a.Printf("No %s found.\n", def.name)
		}
		return nil
	}

	if err := output.WriteTable(a.Out, def.table(view)()); err != nil {
		return err
	}
	if opts.query != "" {
		a.Printf("\n%d of %d %s\n", len(view), coll.Len(), def.name)
	}
	return nil
}

func runGet[T any](ctx context.Context, a *app.App, def resourceDef[T], reader *api.Reader[T], id string) error {
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	item, err := reader.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.Render(item, def.table([]T{*item}))
}

func runCreate[T, C, U any](ctx context.Context, a *app.App, def resourceDef[T], res *api.Resource[T, C, U], raw []byte) error {
	in, err := decodeInput[C](raw)
	if err != nil {
		return err
	}
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	created, err := res.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", def.singular, err)
	}
	if created == nil {
		a.Printf("✓ Created %s\n", def.singular)
		return nil
	}

	if a.Format != output.Table {
		return a.Render(created, nil)
	}
	a.Printf("✓ Created %s %s\n", def.singular, def.id(*created))
	return nil
}

func runUpdate[T, C, U any](ctx context.Context, a *app.App, def resourceDef[T], res *api.Resource[T, C, U], id string, raw []byte) error {
	patch, err := decodeInput[U](raw)
	if err != nil {
		return err
	}
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	updated, err := res.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", def.singular, err)
	}
	if updated == nil || a.Format == output.Table {
		a.Printf("✓ Updated %s %s\n", def.singular, id)
		return nil
	}
	return a.Render(updated, nil)
}

func runDelete[T, C, U any](ctx context.Context, a *app.App, def resourceDef[T], res *api.Resource[T, C, U], id string, yes bool) error {
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	if !yes {
		ok, err := a.Confirm(fmt.Sprintf("Delete %s %s", def.singular, id))
		if err != nil {
			return err
		}
		if !ok {
			a.Printf("Aborted.\n")
			return nil
		}
	}

	if err := res.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", def.singular, err)
	}
	a.Printf("✓ Deleted %s %s\n", def.singular, id)
	return nil
}

func runDeleteMany[T, C, U any](ctx context.Context, a *app.App, def resourceDef[T], res *api.Resource[T, C, U], ids []string, opts deleteManyOptions) error {
	if len(ids) == 0 && opts.query == "" && !opts.all {
		return fmt.Errorf("select %s by id, with --query or with --all", def.name)
	}
	if _, err := a.RequireSession(ctx); err != nil {
		return err
	}

	items, err := res.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", def.name, err)
	}

	coll := def.collection(items)
	for _, id := range ids {
		coll.Select(id)
		if !coll.IsSelected(id) {
			return fmt.Errorf("%s '%s' not found", def.singular, id)
		}
	}
	if opts.all || opts.query != "" {
		coll.SetQuery(opts.query)
		coll.SelectVisible()
	}

	selected := coll.Selected()
	if len(selected) == 0 {
		a.Printf("No %s selected.\n", def.name)
		return nil
	}

	if !opts.yes {
		ok, err := a.Confirm(fmt.Sprintf("Delete %s", plural(len(selected), def.singular, def.name)))
		if err != nil {
			return err
		}
		if !ok {
			a.Printf("Aborted.\n")
			return nil
		}
	}

	if err := res.BulkDelete(ctx, selected); err != nil {
		return fmt.Errorf("failed to delete %s: %w", def.name, err)
	}
	a.Printf("✓ Deleted %s\n", plural(len(selected), def.singular, def.name))
	return nil
}
