package commands

import (
	"fmt"
	"strconv"

	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
)

// NewImagesCommand creates the images command group.
func NewImagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Aliases: []string{"image"},
		Short:   "Inspect images",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List images",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			images, err := gw.client.Images().List(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list images: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.Image]{RenderTable: renderImagesTable}

			return renderer.Render(images)
		},
	})

	return cmd
}

func renderImagesTable(images []openstack.Image) error {
	if len(images) == 0 {
		return printEmpty("images")
	}

	table := newTable("ID", "Name", "Status", "Visibility", "OS", "Min Disk (GB)", "Min RAM (MB)")

	for _, image := range images {
		_ = table.Append(
			image.ID,
			orNone(image.Name),
			image.Status,
			image.Visibility,
			orNone(image.OSDistro),
			strconv.Itoa(image.MinDiskGB),
			strconv.Itoa(image.MinRAMMB),
		)
	}

	return renderTable(table)
}

// NewFlavorsCommand creates the flavors command group.
func NewFlavorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flavors",
		Aliases: []string{"flavor"},
		Short:   "Inspect flavors",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List flavors",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			flavors, err := gw.client.Compute().ListFlavors(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list flavors: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.Flavor]{RenderTable: renderFlavorsTable}

			return renderer.Render(flavors)
		},
	})

	return cmd
}

func renderFlavorsTable(flavors []openstack.Flavor) error {
	if len(flavors) == 0 {
		return printEmpty("flavors")
	}

	table := newTable("ID", "Name", "vCPUs", "RAM (MB)", "Disk (GB)", "Public")

	for _, flavor := range flavors {
		_ = table.Append(
			flavor.ID,
			flavor.Name,
			strconv.Itoa(flavor.VCPUs),
			strconv.Itoa(flavor.RAMMB),
			strconv.Itoa(flavor.DiskGB),
			yesNo(flavor.IsPublic),
		)
	}

	return renderTable(table)
}

// NewKeyPairsCommand creates the keypairs command group.
func NewKeyPairsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keypairs",
		Aliases: []string{"keypair"},
		Short:   "Inspect SSH key pairs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List key pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway()
			if err != nil {
				return err
			}

			keyPairs, err := gw.client.Compute().ListKeyPairs(cmd.Context(), gw.session)
			if err != nil {
				return fmt.Errorf("failed to list key pairs: %w", err)
			}

			renderer := &OutputRenderer[[]openstack.KeyPair]{RenderTable: func(keyPairs []openstack.KeyPair) error {
				if len(keyPairs) == 0 {
					return printEmpty("key pairs")
				}

				table := newTable("Name", "Type", "Fingerprint")
				for _, kp := range keyPairs {
					_ = table.Append(kp.Name, orNone(kp.Type), kp.Fingerprint)
				}

				return renderTable(table)
			}}

			return renderer.Render(keyPairs)
		},
	})

	return cmd
}
