package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewQuotasCommand creates the quotas command.
func NewQuotasCommand() *cobra.Command {
	var withUsage bool

	cmd := &cobra.Command{
		Use:     "quotas",
		Aliases: []string{"quota"},
		Short:   "Show project quotas",
		Long:    "Show compute, block storage and network limits for the session's project",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			lines := openstack.AggregateQuotas(cmd.Context(), gw.client.Quotas(), gw.session, gw.logger)

			if withUsage {
				inventory := gw.inventory(cmd.Context())
				lines = openstack.FillQuotaUsage(lines, inventory.Usage())
			}

			renderer := &OutputRenderer[[]openstack.QuotaLine]{RenderTable: renderQuotaTable}

			return renderer.Render(lines)
		},
	}

	cmd.Flags().BoolVar(&withUsage, "usage", true, "count current usage from resource listings")

	return cmd
}

func renderQuotaTable(lines []openstack.QuotaLine) error {
	if len(lines) == 0 {
		return printEmpty("quotas")
	}

	table := newTable("Resource", "Used", "Limit")
	for _, line := range lines {
		_ = table.Append(line.Resource, formatUsed(line.Used), formatLimit(line.Limit))
	}

	return renderTable(table)
}

// inventory lists what usage is counted from. A listing that fails is
// logged and left nil so its usage stays unknown.
func (g *gateway) inventory(ctx context.Context) *openstack.Inventory {
	inv := &openstack.Inventory{}

	var eg errgroup.Group

	fetch := func(what string, call func() error) {
		eg.Go(func() error {
			err := call()
			if err != nil {
				g.logger.Warn("Usage not counted", map[string]interface{}{"resource": what, "error": err.Error()})
			}

			return nil
		})
	}

	fetch("instances", func() (err error) {
		inv.Instances, err = g.client.Compute().ListInstances(ctx, g.session)

		return err
	})
	fetch("flavors", func() (err error) {
		inv.Flavors, err = g.client.Compute().ListFlavors(ctx, g.session)

		return err
	})
	fetch("volumes", func() (err error) {
		inv.Volumes, err = g.client.Volumes().List(ctx, g.session)

		return err
	})
	fetch("networks", func() (err error) {
		inv.Networks, err = g.client.Networks().ListNetworks(ctx, g.session)

		return err
	})
	fetch("floating IPs", func() (err error) {
		inv.FloatingIPs, err = g.client.FloatingIPs().List(ctx, g.session)

		return err
	})
	fetch("security groups", func() (err error) {
		inv.SecurityGroups, err = g.client.SecurityGroups().List(ctx, g.session)

		return err
	})

	_ = eg.Wait()

	return inv
}

// NewOverviewCommand creates the overview command.
func NewOverviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show a project summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			overview, err := openstack.FetchOverview(cmd.Context(), gw.client, gw.session)
			if err != nil {
				return err
			}

			renderer := &OutputRenderer[*openstack.Overview]{RenderTable: renderOverview}

			return renderer.Render(overview)
		},
	}
}

func renderOverview(overview *openstack.Overview) error {
	running := 0

	for _, instance := range overview.Instances {
		if instance.LifecycleState == openstack.StateRunning {
			running++
		}
	}

	table := newTable("Resource", "Count")
	_ = table.Append("Instances", strconv.Itoa(len(overview.Instances)))
	_ = table.Append("Running", strconv.Itoa(running))
	_ = table.Append("Volumes", strconv.Itoa(len(overview.Volumes)))
	_ = table.Append("Networks", strconv.Itoa(len(overview.Networks)))

	err := renderTable(table)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(output)

	return renderQuotaTable(overview.Quotas)
}
