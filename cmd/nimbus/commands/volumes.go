package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
)

// NewVolumesCommand creates the volumes command group.
func NewVolumesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "volumes",
		Aliases: []string{"volume"},
		Short:   "Manage block storage volumes",
	}

	cmd.AddCommand(newVolumesListCommand())
	cmd.AddCommand(newVolumesCreateCommand())
	cmd.AddCommand(newVolumesDeleteCommand())
	cmd.AddCommand(newVolumesExtendCommand())
	cmd.AddCommand(newVolumesSnapshotCommand())
	cmd.AddCommand(newVolumesAttachCommand())
	cmd.AddCommand(newVolumesDetachCommand())

	return cmd
}

func newVolumesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			volumes, err := gw.client.Volumes().List(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list volumes: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.Volume]{RenderTable: renderVolumesTable}

			return renderer.Render(volumes)
		},
	}
}

func renderVolumesTable(volumes []openstack.Volume) error {
	if len(volumes) == 0 {
		return printEmpty("volumes")
	}

	table := newTable("ID", "Name", "Size (GB)", "Status", "Type", "Attached To", "Bootable")

	for _, volume := range volumes {
		attached := make([]string, 0, len(volume.Attachments))
		for _, attachment := range volume.Attachments {
			attached = append(attached, attachment.ServerID+" on "+attachment.Device)
		}

		_ = table.Append(
			volume.ID,
			orNone(volume.Name),
			strconv.Itoa(volume.SizeGB),
			volume.Status,
			orNone(volume.Type),
			orNone(strings.Join(attached, ", ")),
			strconv.FormatBool(volume.Bootable),
		)
	}

	return renderTable(table)
}

func newVolumesCreateCommand() *cobra.Command {
	var request openstack.CreateVolumeRequest

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.Name = args[0]

			gw, err := newGateway()
			if err != nil {
				return err
			}

			volume, err := gw.client.Volumes().Create(cmd.Context(), gw.session, &request)
			if err != nil {
				return fmt.Errorf("failed to create volume: %w", err)
			}

			return gw.accepted("volume-create", volume.ID, map[string]string{
				"name":    volume.Name,
				"size_gb": strconv.Itoa(volume.SizeGB),
			})
		},
	}

	cmd.Flags().IntVar(&request.SizeGB, "size", 0, "size in GB")
	cmd.Flags().StringVar(&request.VolumeType, "type", "", "volume type")
	cmd.Flags().StringVar(&request.AvailabilityZone, "availability-zone", "", "availability zone")
	cmd.Flags().StringVar(&request.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newVolumesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete VOLUME_ID",
		Short: "Delete a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.Volumes().Delete(cmd.Context(), gw.session, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete volume: %w", err)
			}

			return gw.accepted("volume-delete", args[0], nil)
		},
	}
}

func newVolumesExtendCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "extend VOLUME_ID",
		Short: "Grow a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.Volumes().Extend(cmd.Context(), gw.session, args[0], &openstack.ExtendVolumeRequest{NewSizeGB: size})
			if err != nil {
				return fmt.Errorf("failed to extend volume: %w", err)
			}

			return gw.accepted("volume-extend", args[0], map[string]string{"size_gb": strconv.Itoa(size)})
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "new size in GB")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newVolumesSnapshotCommand() *cobra.Command {
	var request openstack.CreateVolumeSnapshotRequest

	cmd := &cobra.Command{
		Use:   "snapshot VOLUME_ID",
		Short: "Snapshot a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.VolumeID = args[0]

			gw, err := newGateway()
			if err != nil {
				return err
			}

			snapshot, err := gw.client.Volumes().CreateSnapshot(cmd.Context(), gw.session, &request)
			if err != nil {
				return fmt.Errorf("failed to snapshot volume: %w", err)
			}

			return gw.accepted("volume-snapshot", args[0], map[string]string{"snapshot_id": snapshot.ID})
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "snapshot name")
	cmd.Flags().StringVar(&request.Description, "description", "", "snapshot description")
	cmd.Flags().BoolVar(&request.Force, "force", false, "snapshot even when the volume is attached")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newVolumesAttachCommand() *cobra.Command {
	var request openstack.AttachVolumeRequest

	cmd := &cobra.Command{
		Use:   "attach VOLUME_ID",
		Short: "Attach a volume to an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request.VolumeID = args[0]

			gw, err := newGateway()
			if err != nil {
				return err
			}

			attachment, err := gw.client.Compute().AttachVolume(cmd.Context(), gw.session, &request)
			if err != nil {
				return fmt.Errorf("failed to attach volume: %w", err)
			}

			return gw.accepted("volume-attach", args[0], map[string]string{
				"instance_id": request.InstanceID,
				"device":      attachment.Device,
			})
		},
	}

	cmd.Flags().StringVar(&request.InstanceID, "instance", "", "instance ID")
	cmd.Flags().StringVar(&request.Device, "device", "", "device name, e.g. /dev/vdb")
	_ = cmd.MarkFlagRequired("instance")

	return cmd
}

func newVolumesDetachCommand() *cobra.Command {
	var instanceID string

	cmd := &cobra.Command{
		Use:   "detach VOLUME_ID",
		Short: "Detach a volume from an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			err = gw.client.Compute().DetachVolume(cmd.Context(), gw.session, instanceID, args[0])
			if err != nil {
				return fmt.Errorf("failed to detach volume: %w", err)
			}

			return gw.accepted("volume-detach", args[0], map[string]string{"instance_id": instanceID})
		},
	}

	cmd.Flags().StringVar(&instanceID, "instance", "", "instance ID")
	_ = cmd.MarkFlagRequired("instance")

	return cmd
}
