package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addListFlags(fs *pflag.FlagSet, q *resources.ListQuery) {
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.Size, "size", 20, "page size")
	fs.StringVar(&q.Keyword, "keyword", "", "keyword filter")
}

func newDepartmentsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"dept"},
		Short:   "Management departments",
	}

	var (
		q    resources.ListQuery
		tree bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if tree {
				roots, err := a.res.Departments.Tree(ctx)
				if err != nil {
					return err
				}
				if opts.json() {
					return render(w, opts, roots, nil, nil)
				}
				printDepartmentTree(w, roots, 0)
				return nil
			}

			page, err := a.res.Departments.List(ctx, q)
			if err != nil {
				return err
			}
			err = render(w, opts, page, []string{"ID", "NAME", "PARENT", "CONTACT", "ACTIVE"}, func(add func(...any)) {
				for _, d := range page.Items {
					add(d.ID, d.Name, d.ParentName, d.Contact, d.IsActive)
				}
			})
			pageFooter(w, opts, page)
			return err
		}),
	}
	addListFlags(list.Flags(), &q)
	list.Flags().BoolVar(&tree, "tree", false, "print the department hierarchy")

	cmd.AddCommand(list)
	return cmd
}

func printDepartmentTree(w io.Writer, nodes []resources.Department, depth int) {
	for _, d := range nodes {
		fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), d.Name, d.ID)
		printDepartmentTree(w, d.Children, depth+1)
	}
}

func newUsersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User accounts",
	}

	var q resources.ListQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			page, err := a.res.Users.List(ctx, q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			err = render(w, opts, page, []string{"ID", "USERNAME", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN"}, func(add func(...any)) {
				for _, u := range page.Items {
					add(u.ID, u.Username, u.Email, u.RoleName, u.IsActive, u.LastLogin)
				}
			})
			pageFooter(w, opts, page)
			return err
		}),
	}
	addListFlags(list.Flags(), &q)

	cmd.AddCommand(list)
	return cmd
}

func newDictCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Data dictionaries",
	}

	var value string
	get := &cobra.Command{
		Use:   "get <type-code>",
		Short: "Show the active entries of a dictionary",
		Long: `Show the active entries of a dictionary in sort order. With --value only the
label of that entry is printed, or the value itself when it has no entry.`,
		Args: cobra.ExactArgs(1),
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if cmd.Flags().Changed("value") {
				fmt.Fprintln(w, a.res.DictCache.Label(ctx, args[0], value, value))
				return nil
			}

			items, err := a.res.DictCache.Items(ctx, args[0])
			if err != nil {
				return err
			}
			return render(w, opts, items, []string{"VALUE", "LABEL", "DESCRIPTION"}, func(add func(...any)) {
				for _, item := range items {
					add(item.Value, item.Label, item.Description)
				}
			})
		}),
	}
	get.Flags().StringVar(&value, "value", "", "print the label of this value")

	cmd.AddCommand(get)
	return cmd
}

func newThresholdsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Warning thresholds",
	}

	var (
		q      resources.ListQuery
		active bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List warning thresholds",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			var (
				items []resources.Threshold
				page  *resources.Page[resources.Threshold]
				err   error
			)
			if active {
				items, err = a.res.Warnings.ActiveThresholds(ctx)
			} else if page, err = a.res.Warnings.Thresholds.List(ctx, q); err == nil {
				items = page.Items
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			err = render(w, opts, items, []string{"ID", "STATION", "ITEM", "LOWER", "UPPER", "UNIT"}, func(add func(...any)) {
				for _, t := range items {
					add(t.ID, t.StationName, firstNonEmpty(t.MonitoringItemName, t.MonitoringItem), t.LowerLimit, t.UpperLimit, t.Unit)
				}
			})
			if page != nil {
				pageFooter(w, opts, page)
			}
			return err
		}),
	}
	addListFlags(list.Flags(), &q)
	list.Flags().BoolVar(&active, "active", false, "only thresholds currently enforced")

	cmd.AddCommand(list)
	return cmd
}

func newWarningsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warnings",
		Short: "Warning records",
	}

	var (
		q                       resources.ListQuery
		status, level, location string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List warning records",
		Args:  cobra.NoArgs,
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			q.Filters = map[string]string{
				"warningStatus":   status,
				"warningLevel":    level,
				"warningLocation": location,
			}
			page, err := a.res.Warnings.Records.List(ctx, q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			err = render(w, opts, page, []string{"ID", "LOCATION", "TYPE", "LEVEL", "STATUS", "OCCURRED"}, func(add func(...any)) {
				for _, r := range page.Items {
					add(r.ID, r.WarningLocation,
						firstNonEmpty(r.WarningTypeName, r.WarningType),
						firstNonEmpty(r.WarningLevelName, r.WarningLevel),
						firstNonEmpty(r.WarningStatusName, r.WarningStatus),
						r.OccurredAt)
				}
			})
			pageFooter(w, opts, page)
			return err
		}),
	}
	addListFlags(list.Flags(), &q)
	list.Flags().StringVar(&status, "status", "", "filter by warning status")
	list.Flags().StringVar(&level, "level", "", "filter by warning level")
	list.Flags().StringVar(&location, "location", "", "filter by warning location")

	cmd.AddCommand(list)
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
