package commands

import (
	"fmt"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
)

// NewNetworksCommand creates the networks command group.
func NewNetworksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "networks",
		Aliases: []string{"network"},
		Short:   "Inspect networks",
	}

	cmd.AddCommand(newNetworksListCommand())

	return cmd
}

func newNetworksListCommand() *cobra.Command {
	var enrich bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List networks",
		Long:  "List networks; with --detail each network also shows its subnets and connected routers",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			networks, err := gw.client.Networks().ListNetworks(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list networks: %w", err)
			}

			if enrich {
				networks, err = openstack.EnrichNetworks(cmd.Context(), gw.client, gw.session, networks, "")
				if err != nil {
					return err
				}
			}

			renderer := &OutputRenderer[[]openstack.Network]{RenderTable: renderNetworksTable}

			return renderer.Render(networks)
		},
	}

	cmd.Flags().BoolVar(&enrich, "detail", false, "include subnets and routers")

	return cmd
}

func renderNetworksTable(networks []openstack.Network) error {
	if len(networks) == 0 {
		return printEmpty("networks")
	}

	table := newTable("ID", "Name", "Status", "Subnets", "Routers", "Shared", "External")

	for _, network := range networks {
		subnets := make([]string, 0, len(network.SubnetIDs))
		if network.Subnets != nil {
			for _, subnet := range network.Subnets {
				subnets = append(subnets, subnet.CIDR)
			}
		} else {
			subnets = append(subnets, network.SubnetIDs...)
		}

		routers := make([]string, 0, len(network.Routers))
		for _, router := range network.Routers {
			routers = append(routers, orNone(router.Name))
		}

		_ = table.Append(
			network.ID,
			orNone(network.Name),
			network.Status,
			orNone(strings.Join(subnets, ", ")),
			orNone(strings.Join(routers, ", ")),
			yesNo(network.IsShared),
			yesNo(network.IsExternal),
		)
	}

	return renderTable(table)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// NewFloatingIPsCommand creates the floating-ips command group.
func NewFloatingIPsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "floating-ips",
		Aliases: []string{"floating-ip", "fip"},
		Short:   "Manage floating IPs",
	}

	cmd.AddCommand(newFloatingIPsListCommand())
	cmd.AddCommand(newFloatingIPsAllocateCommand())
	cmd.AddCommand(newFloatingIPsAssociateCommand())
	cmd.AddCommand(newFloatingIPsDisassociateCommand())
	cmd.AddCommand(newFloatingIPsReleaseCommand())

	return cmd
}

func newFloatingIPsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List floating IPs",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			ips, err := gw.client.FloatingIPs().List(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list floating IPs: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.FloatingIP]{RenderTable: renderFloatingIPsTable}

			return renderer.Render(ips)
		},
	}
}

func renderFloatingIPsTable(ips []openstack.FloatingIP) error {
	if len(ips) == 0 {
		return printEmpty("floating IPs")
	}

	table := newTable("ID", "Address", "Status", "Fixed IP", "Port", "Pool")

	for _, ip := range ips {
		_ = table.Append(
			ip.ID,
			ip.Address,
			ip.Status,
			ptrOrNone(ip.FixedIPAddress),
			ptrOrNone(ip.AssociatedPortID),
			ip.PoolNetworkID,
		)
	}

	return renderTable(table)
}

func newFloatingIPsAllocateCommand() *cobra.Command {
	var request openstack.AllocateFloatingIPRequest

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate a floating IP",
		Long:  "Allocate a floating IP; without --pool the first external network is used",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			if request.FloatingNetworkID == "" {
				networks, err := gw.client.Networks().ListNetworks(cmd.Context(), gw.session)
				if err != nil {
					return fmt.Errorf("failed to list networks: %w", err)
				}

				pool, err := openstack.PickExternalNetwork(networks)
				if err != nil {
					return err
				}

				request.FloatingNetworkID = pool.ID
			}

			ip, err := gw.client.FloatingIPs().Allocate(cmd.Context(), gw.session, &request)
			if err != nil {
				return fmt.Errorf("failed to allocate floating IP: %w", err)
			}

			return gw.accepted("floating-ip-allocate", ip.ID, map[string]string{"address": ip.Address})
		},
	}

	cmd.Flags().StringVar(&request.FloatingNetworkID, "pool", "", "external network ID")
	cmd.Flags().StringVar(&request.Description, "description", "", "description")

	return cmd
}

func newFloatingIPsAssociateCommand() *cobra.Command {
	var portID, instanceID string

	cmd := &cobra.Command{
		Use:   "associate FLOATING_IP_ID",
		Short: "Bind a floating IP to a port or instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case portID != "" && instanceID != "":
				return constants.ErrAmbiguousTarget
			case portID == "" && instanceID == "":
				return constants.ErrMissingTarget
			}

			gw, err := newGateway()
			if err != nil {
				return err
			}

			var ip *openstack.FloatingIP
			if portID != "" {
				ip, err = gw.client.FloatingIPs().Associate(cmd.Context(), gw.session, args[0], portID)
			} else {
				ip, err = gw.client.FloatingIPs().AssociateInstance(cmd.Context(), gw.session, args[0], instanceID)
			}

			if err != nil {
				return fmt.Errorf("failed to associate floating IP: %w", err)
			}

			return gw.accepted("floating-ip-associate", ip.ID, map[string]string{
				"port_id":     ptrOrNone(ip.AssociatedPortID),
				"instance_id": instanceID,
			})
		},
	}

	cmd.Flags().StringVar(&portID, "port", "", "port ID")
	cmd.Flags().StringVar(&instanceID, "instance", "", "instance ID; its first compute port is used")

	return cmd
}

func newFloatingIPsDisassociateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disassociate FLOATING_IP_ID",
		Short: "Unbind a floating IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			_, err = gw.client.FloatingIPs().Disassociate(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to disassociate floating IP: %w", err)
			}

			return gw.accepted("floating-ip-disassociate", args[0], nil)
		},
	}
}

func newFloatingIPsReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release FLOATING_IP_ID",
		Short: "Release a floating IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.FloatingIPs().Release(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to release floating IP: %w", err)
			}

			return gw.accepted("floating-ip-release", args[0], nil)
		},
	}
}
