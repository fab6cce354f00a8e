package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/data"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/export"
	"github.com/spf13/cobra"
)

// loadSnapshot reads every collection. Collections that failed are named
// on stderr and left empty.
func (a *app) loadSnapshot(cmd *cobra.Command) (entities.Snapshot, error) {
	if err := a.requireSession(); err != nil {
		return entities.Snapshot{}, err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	snapshot, report := data.NewLoader(a.svc).Load(ctx)
	if !report.Complete() {
		names := make([]string, 0, len(report.Failures))
		for name := range report.Failures {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to load %s\n", strings.Join(names, ", "))
	}
	return snapshot, nil
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the headline counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := a.loadSnapshot(cmd)
			if err != nil {
				return err
			}

			overview := aggregate.BuildOverview(snapshot, a.now(), a.thresholds())
			st := overview.Stats
			visits := aggregate.ServiceTypes(snapshot.Visits)

			t := newTable(a.out, "METRIC", "COUNT")
			t.row("Patients", itoa(st.TotalPatients))
			t.row("Companies", itoa(st.TotalCompanies))
			t.row("Factors", itoa(st.TotalFactors))
			t.row("Treatments", itoa(st.TotalTreatments))
			t.row("Distributions", itoa(st.TotalDistributions))
			t.row("  pending", itoa(st.PendingDistributions))
			t.row("  delivered", itoa(st.DeliveredDistributions))
			t.row("Visits", itoa(visits.Total))
			t.row("Low stock factors", itoa(len(overview.LowStock)))
			t.row("Factors expiring soon", itoa(len(overview.ExpiringSoon)))
			t.row("Expired factors", itoa(len(overview.Expired)))
			return t.flush()
		},
	}
}

func alertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List low stock, expiring and expired factor lots",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := a.loadSnapshot(cmd)
			if err != nil {
				return err
			}

			th := a.thresholds()
			overview := aggregate.BuildOverview(snapshot, a.now(), th)
			if len(overview.LowStock)+len(overview.ExpiringSoon)+len(overview.Expired) == 0 {
				fmt.Fprintln(a.out, "No alerts")
				return nil
			}

			t := newTable(a.out, "ALERT", "ID", "NAME", "LOT", "QUANTITY", "EXPIRES")
			add := func(alert string, factors []entities.Factor) {
				for _, f := range factors {
					t.row(alert, itoa(f.ID), orDash(f.Name), orDash(f.LotNo), ftoa(f.Quantity), day(f.ExpiryDate))
				}
			}
			add(fmt.Sprintf("low stock (<%s)", ftoa(th.LowStock)), overview.LowStock)
			add(fmt.Sprintf("expiring (%dd)", a.cfg.ExpiryWindowDays), overview.ExpiringSoon)
			add("expired", overview.Expired)
			return t.flush()
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Write a dataset to a CSV or XLSX file",
		Long:  "Datasets: " + strings.Join(export.Datasets(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset := args[0]
			formatFlag, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")

			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			// Reject unknown names before loading anything
			if _, ok, _ := export.Dataset(dataset, entities.Snapshot{}); !ok {
				return fmt.Errorf("unknown dataset %q, expected one of %s", dataset, strings.Join(export.Datasets(), ", "))
			}

			snapshot, err := a.loadSnapshot(cmd)
			if err != nil {
				return err
			}
			tbl, _, err := export.Dataset(dataset, snapshot)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, tbl, format, dataset); err != nil {
				return err
			}

			if outPath == "" {
				outPath = format.FileName(dataset, a.now())
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(a.out, "Wrote %d %s rows to %s\n", len(tbl.Rows), dataset, outPath)
			return nil
		},
	}
	cmd.Flags().String("format", "csv", "Output format: csv or xlsx")
	cmd.Flags().String("out", "", "Output file (defaults to <dataset>_<date>.<format>)")
	return cmd
}
