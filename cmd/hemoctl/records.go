package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/services"
	"github.com/spf13/cobra"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Work with patient records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			patients, err := a.svc.Patients.List(ctx)
			if err != nil {
				return err
			}
			patients = aggregate.SearchPatients(patients, search)

			t := newTable(a.out, "ID", "NAME", "NATIONAL ID", "STATE", "BORN", "STATUS")
			for _, p := range patients {
				t.row(itoa(p.ID), orDash(p.FullName), orDash(p.NationalIDNumber), orDash(p.State),
					day(p.DateOfBirth), orDash(p.VitalStatus))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d patient(s)\n", len(patients))
			return nil
		},
	}
	listCmd.Flags().String("search", "", "Match name or national id")

	cmd.AddCommand(listCmd)
	return cmd
}

func visitsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visits",
		Short: "Work with patient visits",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			serviceType, _ := cmd.Flags().GetString("service-type")
			if !aggregate.KnownServiceType(serviceType) {
				return fmt.Errorf("unknown service type %q, expected all, %s, %s or %s", serviceType,
					entities.ServiceNewVisit, entities.ServiceFollowup, entities.ServiceHospitalAdmission)
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			visits, err := a.svc.Visits.List(ctx)
			if err != nil {
				return err
			}
			patients, err := a.svc.Patients.List(ctx)
			if err != nil {
				return err
			}

			visits = aggregate.FilterVisits(visits, patients, aggregate.VisitFilter{Search: search, ServiceType: serviceType})
			names := make(map[int]string, len(patients))
			for _, p := range patients {
				names[p.ID] = p.FullName
			}

			t := newTable(a.out, "ID", "DATE", "PATIENT", "CENTER", "SERVICE", "COMPLAINT")
			for _, v := range visits {
				t.row(itoa(v.ID), day(v.VisitDate), orDash(names[v.PatientID]), orDash(v.CenterName),
					orDash(v.ServiceType), orDash(v.Complaint))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d visit(s)\n", len(visits))
			return nil
		},
	}
	listCmd.Flags().String("search", "", "Match patient name, national id or center")
	listCmd.Flags().String("service-type", "all", "all, new_visit, followup or hospital_admission")

	cmd.AddCommand(listCmd)
	return cmd
}

func distributionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distributions",
		Short: "Track factor distributions to states",
	}

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List distributions awaiting delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			pending, err := a.svc.Distributions.Pending(ctx)
			if err != nil {
				return err
			}

			t := newTable(a.out, "ID", "STATE", "FACTOR", "QUANTITY", "COMPANY", "EXPIRES")
			for _, d := range pending {
				t.row(itoa(d.ID), orDash(d.State), itoa(d.FactorID), ftoa(d.Quantity), orDash(d.CompanyName),
					day(d.ExpiryDate))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d pending distribution(s)\n", len(pending))
			return nil
		},
	}

	deliverCmd := &cobra.Command{
		Use:   "deliver <id>",
		Short: "Mark a pending distribution delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := a.svc.Distributions.Deliver(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Distribution %d delivered\n", id)
			return nil
		},
	}

	revertCmd := &cobra.Command{
		Use:   "revert <id>",
		Short: "Move a delivered distribution back to pending",
		Long: "Requires ALLOW_DELIVERY_REVERSAL=true. Reasons: " +
			strings.Join(services.ReversalReasons, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			// The audit trail names the logged in user, never a free-form value
			var actor string
			if a.svc.Distributions.ReversalAllowed() {
				user, err := a.svc.Auth.CurrentUser(ctx)
				if err != nil {
					return fmt.Errorf("cannot resolve the reverting user: %w", err)
				}
				actor = user.Name
				if actor == "" {
					actor = user.Email
				}
			}

			event, err := a.svc.Distributions.RevertDelivery(ctx, id, reason, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Distribution %d reverted to %s (audit %s, by %s)\n",
				id, entities.StatusPending, event.ID, event.Actor)
			return nil
		},
	}
	revertCmd.Flags().String("reason", "", "One of: "+strings.Join(services.ReversalReasons, ", "))

	cmd.AddCommand(pendingCmd)
	cmd.AddCommand(deliverCmd)
	cmd.AddCommand(revertCmd)
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
