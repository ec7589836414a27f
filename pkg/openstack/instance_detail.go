package openstack

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// InstanceDetail is everything the instance page shows.
type InstanceDetail struct {
	Instance       Instance        `json:"instance"        yaml:"instance"`
	Flavor         *Flavor         `json:"flavor"          yaml:"flavor"`
	Image          *Image          `json:"image"           yaml:"image"`
	Volumes        []Volume        `json:"volumes"         yaml:"volumes"`
	SecurityGroups []SecurityGroup `json:"security_groups" yaml:"security_groups"`
}

// AssembleInstanceDetail fetches the instance together with the volumes,
// flavors, images and security groups needed to describe it. Any failed
// lookup fails the whole detail; services missing from the catalog only
// leave their part empty.
func AssembleInstanceDetail(ctx context.Context, client Client, session *Session, instanceID string) (*InstanceDetail, error) {
	err := RequireID("instance_id", instanceID)
	if err != nil {
		return nil, err
	}

	var (
		instance *Instance
		volumes  []Volume
		flavors  []Flavor
		images   []Image
		groups   []SecurityGroup
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		instance, err = client.Compute().GetInstance(gctx, session, instanceID)

		return err
	})

	g.Go(func() error {
		var err error

		flavors, err = client.Compute().ListFlavors(gctx, session)

		return err
	})

	g.Go(func() error {
		var err error

		volumes, err = optional(client.Volumes().List(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		images, err = optional(client.Images().List(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		groups, err = optional(client.SecurityGroups().List(gctx, session))

		return err
	})

	err = g.Wait()
	if err != nil {
		return nil, fmt.Errorf("assembling instance %s: %w", instanceID, err)
	}

	detail := &InstanceDetail{
		Instance:       *instance,
		Volumes:        []Volume{},
		SecurityGroups: []SecurityGroup{},
	}

	for i := range flavors {
		if flavors[i].ID == instance.FlavorID {
			detail.Flavor = &flavors[i]
			detail.Instance.FlavorName = flavors[i].Name

			break
		}
	}

	for i := range images {
		if images[i].ID == instance.ImageID {
			detail.Image = &images[i]
			detail.Instance.ImageName = images[i].Name

			break
		}
	}

	for _, volume := range volumes {
		if attachedTo(volume, instance) {
			detail.Volumes = append(detail.Volumes, volume)
		}
	}

	for _, group := range groups {
		if slices.Contains(instance.SecurityGroupNames, group.Name) {
			detail.SecurityGroups = append(detail.SecurityGroups, group)
		}
	}

	return detail, nil
}

func attachedTo(volume Volume, instance *Instance) bool {
	if slices.Contains(instance.AttachedVolumeIDs, volume.ID) {
		return true
	}

	for _, attachment := range volume.Attachments {
		if attachment.ServerID == instance.ID {
			return true
		}
	}

	return false
}
