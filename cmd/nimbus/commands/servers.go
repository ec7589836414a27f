package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
)

// NewServersCommand creates the servers command group.
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servers",
		Aliases: []string{"server", "instances"},
		Short:   "Manage compute instances",
		Long:    "List, inspect, launch and control compute instances",
	}

	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersShowCommand())
	cmd.AddCommand(newServersLaunchCommand())
	cmd.AddCommand(newServersLaunchOptionsCommand())
	cmd.AddCommand(newServersDeleteCommand())
	cmd.AddCommand(newServerActionCommand("start", "Start a stopped instance", "start",
		func(c openstack.ComputeClient) serverAction { return c.StartInstance }))
	cmd.AddCommand(newServerActionCommand("stop", "Stop a running instance", "stop",
		func(c openstack.ComputeClient) serverAction { return c.StopInstance }))
	cmd.AddCommand(newServerActionCommand("shelve", "Shelve an instance", "shelve",
		func(c openstack.ComputeClient) serverAction { return c.ShelveInstance }))
	cmd.AddCommand(newServerActionCommand("unshelve", "Unshelve an instance", "unshelve",
		func(c openstack.ComputeClient) serverAction { return c.UnshelveInstance }))
	cmd.AddCommand(newServersRebootCommand())
	cmd.AddCommand(newServersSnapshotCommand())
	cmd.AddCommand(newServersConsoleCommand())

	return cmd
}

func newServersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			instances, err := gw.client.Compute().ListInstances(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list instances: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.Instance]{RenderTable: renderInstancesTable}

			return renderer.Render(instances)
		},
	}
}

func renderInstancesTable(instances []openstack.Instance) error {
	if len(instances) == 0 {
		return printEmpty("instances")
	}

	table := newTable("ID", "Name", "State", "Status", "Addresses", "Flavor", "Created")

	for _, instance := range instances {
		flavor := instance.FlavorName
		if flavor == "" {
			flavor = instance.FlavorID
		}

		_ = table.Append(
			instance.ID,
			instance.Name,
			string(instance.LifecycleState),
			instance.Status,
			orNone(instance.IPAddresses),
			orNone(flavor),
			formatTime(instance.CreatedAt),
		)
	}

	return renderTable(table)
}

func newServersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show INSTANCE_ID",
		Short: "Show instance details",
		Long:  "Show an instance with its flavor, image, attached volumes and security groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			detail, err := openstack.AssembleInstanceDetail(cmd.Context(), gw.client, gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to get instance: %w", err)
			}

			renderer := &OutputRenderer[*openstack.InstanceDetail]{RenderTable: renderInstanceDetail}

			return renderer.Render(detail)
		},
	}
}

func renderInstanceDetail(detail *openstack.InstanceDetail) error {
	instance := detail.Instance

	table := newTable("Property", "Value")
	_ = table.Append("ID", instance.ID)
	_ = table.Append("Name", instance.Name)
	_ = table.Append("State", string(instance.LifecycleState))
	_ = table.Append("Status", instance.Status)
	_ = table.Append("VM State", orNone(instance.VMState))
	_ = table.Append("Task State", ptrOrNone(instance.TaskState))
	_ = table.Append("Power State", ptrOrNone(instance.PowerState))
	_ = table.Append("Flavor", orNone(instance.FlavorName))
	_ = table.Append("Image", orNone(instance.ImageName))
	_ = table.Append("Addresses", orNone(instance.IPAddresses))
	_ = table.Append("Key Name", orNone(instance.KeyName))
	_ = table.Append("Availability Zone", orNone(instance.AvailabilityZone))
	_ = table.Append("Host ID", orNone(instance.HostID))
	_ = table.Append("Locked", fmt.Sprint(instance.Locked))
	_ = table.Append("Launched", formatTime(instance.LaunchedAt))
	_ = table.Append("Created", formatTime(instance.CreatedAt))

	volumes := make([]string, 0, len(detail.Volumes))
	for _, volume := range detail.Volumes {
		volumes = append(volumes, fmt.Sprintf("%s (%d GB)", orNone(volume.Name), volume.SizeGB))
	}

	_ = table.Append("Volumes", orNone(strings.Join(volumes, ", ")))
	_ = table.Append("Security Groups", orNone(strings.Join(instance.SecurityGroupNames, ", ")))

	return renderTable(table)
}

func newServersLaunchCommand() *cobra.Command {
	var (
		request      openstack.LaunchInstanceRequest
		userDataFile string
	)

	cmd := &cobra.Command{
		Use:   "launch NAME",
		Short: "Launch an instance",
		Long:  "Launch a new instance. Without --network the compute service picks one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Name = args[0]

			if userDataFile != "" {
				data, err := os.ReadFile(filepath.Clean(userDataFile))
				if err != nil {
					return fmt.Errorf("reading user data: %w", err)
				}

				request.UserData = base64.StdEncoding.EncodeToString(data)
			}

			gw, err := newGateway()
			if err != nil {
				return err
			}

			instance, err := gw.client.Compute().LaunchInstance(cmd.Context(), gw.session, &request)
			if err != nil {
				return fmt.Errorf("failed to launch instance: %w", err)
			}

			return gw.accepted("launch", instance.ID, map[string]string{"name": instance.Name})
		},
	}

	cmd.Flags().StringVar(&request.ImageID, "image", "", "image ID")
	cmd.Flags().StringVar(&request.FlavorID, "flavor", "", "flavor ID")
	cmd.Flags().StringVar(&request.KeyName, "key-name", "", "key pair name")
	cmd.Flags().StringSliceVar(&request.SecurityGroupNames, "security-group", nil, "security group name (repeatable)")
	cmd.Flags().StringSliceVar(&request.NetworkIDs, "network", nil, "network ID (repeatable)")
	cmd.Flags().StringVar(&request.AvailabilityZone, "availability-zone", "", "availability zone")
	cmd.Flags().StringVar(&userDataFile, "user-data", "", "cloud-init user data file")

	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("flavor")

	return cmd
}

func newServersLaunchOptionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "launch-options",
		Short: "List the flavors, images, networks, security groups and key pairs available for launch",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			options, err := openstack.FetchLaunchOptions(cmd.Context(), gw.client, gw.session)
			if err != nil {
				return err
			}

			renderer := &OutputRenderer[*openstack.LaunchOptions]{RenderTable: renderLaunchOptions}

			return renderer.Render(options)
		},
	}
}

func renderLaunchOptions(options *openstack.LaunchOptions) error {
	table := newTable("Kind", "ID", "Name")

	for _, f := range options.Flavors {
		_ = table.Append("flavor", f.ID, fmt.Sprintf("%s (%d vCPU, %d MB)", f.Name, f.VCPUs, f.RAMMB))
	}

	for _, i := range options.Images {
		_ = table.Append("image", i.ID, orNone(i.Name))
	}

	for _, n := range options.Networks {
		_ = table.Append("network", n.ID, orNone(n.Name))
	}

	for _, sg := range options.SecurityGroups {
		_ = table.Append("security group", sg.ID, sg.Name)
	}

	for _, kp := range options.KeyPairs {
		_ = table.Append("key pair", None, kp.Name)
	}

	return renderTable(table)
}

func newServersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete INSTANCE_ID",
		Short: "Delete an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.Compute().TerminateInstance(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete instance: %w", err)
			}

			return gw.accepted("delete", args[0], nil)
		},
	}
}

type serverAction func(ctx context.Context, session *openstack.Session, instanceID string) error

func newServerActionCommand(use, short, kind string, pick func(openstack.ComputeClient) serverAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " INSTANCE_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = pick(gw.client.Compute())(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to %s instance: %w", use, err)
			}

			return gw.accepted(kind, args[0], nil)
		},
	}
}

func newServersRebootCommand() *cobra.Command {
	var hard bool

	cmd := &cobra.Command{
		Use:   "reboot INSTANCE_ID",
		Short: "Reboot an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			request := &openstack.RebootRequest{Type: openstack.RebootSoft}
			if hard {
				request.Type = openstack.RebootHard
			}

			err = gw.client.Compute().RebootInstance(cmd.Context(), gw.session, args[0], request)
			if err != nil {
				return fmt.Errorf("failed to reboot instance: %w", err)
			}

			return gw.accepted("reboot", args[0], map[string]string{"type": request.Type})
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "hard reboot")

	return cmd
}

func newServersSnapshotCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "snapshot INSTANCE_ID",
		Short: "Create an image from an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			imageID, err := gw.client.Compute().SnapshotInstance(cmd.Context(), gw.session, args[0],
				&openstack.SnapshotInstanceRequest{Name: name})
			if err != nil {
				return fmt.Errorf("failed to snapshot instance: %w", err)
			}

			return gw.accepted("snapshot", args[0], map[string]string{"image_id": imageID, "name": name})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "snapshot image name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newServersConsoleCommand() *cobra.Command {
	var consoleType string

	cmd := &cobra.Command{
		Use:   "console INSTANCE_ID",
		Short: "Get a remote console URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ConsoleHTTPTimeout)
			defer cancel()

			console, err := gw.client.Compute().GetConsoleURL(ctx, gw.session, args[0],
				&openstack.ConsoleRequest{Type: consoleType})
			if err != nil {
				return fmt.Errorf("failed to get console: %w", err)
			}

			renderer := &OutputRenderer[*openstack.ConsoleURL]{RenderTable: func(c *openstack.ConsoleURL) error {
				_, err := fmt.Fprintln(output, c.URL)

				return err
			}}

			return renderer.Render(console)
		},
	}

	cmd.Flags().StringVar(&consoleType, "type", openstack.ConsoleNoVNC, "console type (novnc, spice-html5, serial)")

	return cmd
}
