package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	"github.com/jrsteele09/go-waterres-client/resources"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type exportFunc func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, keyword string) (*apiclient.Response, error)

var exporters = map[string]exportFunc{
	"permissions": func(ctx context.Context, res *resources.Client, _ resources.MonitoringQuery, keyword string) (*apiclient.Response, error) {
		return res.Permissions.Export(ctx, resources.ListQuery{Keyword: keyword})
	},
	"flow": func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, _ string) (*apiclient.Response, error) {
		return res.Monitoring.Flow.Export(ctx, q)
	},
	"water-level": func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, _ string) (*apiclient.Response, error) {
		return res.Monitoring.WaterLevel.Export(ctx, q)
	},
	"water-quality": func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, _ string) (*apiclient.Response, error) {
		return res.Monitoring.WaterQuality.Export(ctx, q)
	},
	"rainfall": func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, _ string) (*apiclient.Response, error) {
		return res.Monitoring.Rainfall.Export(ctx, q)
	},
	"water-condition": func(ctx context.Context, res *resources.Client, q resources.MonitoringQuery, _ string) (*apiclient.Response, error) {
		return res.Monitoring.WaterCondition.Export(ctx, q)
	},
}

func exportNames() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		out, keyword, start, end string
		stationID                int64
	)

	cmd := &cobra.Command{
		Use:       "export <resource>",
		Short:     "Download a spreadsheet export",
		Long:      "Download a spreadsheet export. Resources: " + strings.Join(exportNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: exportNames(),
		RunE: withLogin(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			export, ok := exporters[args[0]]
			if !ok {
				return errors.Errorf("unknown export %q, expected one of %s", args[0], strings.Join(exportNames(), ", "))
			}

			q := resources.MonitoringQuery{StationID: stationID}
			var err error
			if q.StartTime, err = parseTimeFlag("start", start); err != nil {
				return err
			}
			if q.EndTime, err = parseTimeFlag("end", end); err != nil {
				return err
			}

			resp, err := export(ctx, a.res, q, keyword)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = resources.AttachmentName(resp, args[0]+"-export.xlsx")
			}
			if err := os.WriteFile(path, resp.Blob, 0o644); err != nil {
				return errors.Wrap(err, "[export] write file")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(resp.Blob), path)
			return nil
		}),
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (default: the name the server suggests)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "keyword filter (permissions)")
	cmd.Flags().Int64Var(&stationID, "station", 0, "monitoring station id")
	cmd.Flags().StringVar(&start, "start", "", "start time, yyyy-mm-dd or yyyy-mm-dd hh:mm:ss")
	cmd.Flags().StringVar(&end, "end", "", "end time, yyyy-mm-dd or yyyy-mm-dd hh:mm:ss")
	return cmd
}

func parseTimeFlag(name, value string) (*resources.Timestamp, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &resources.Timestamp{Time: t}, nil
		}
	}
	return nil, errors.Errorf("invalid --%s %q", name, value)
}
