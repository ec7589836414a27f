package openstack

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LaunchOptions are the choices offered when launching an instance.
type LaunchOptions struct {
	Flavors        []Flavor        `json:"flavors"         yaml:"flavors"`
	Images         []Image         `json:"images"          yaml:"images"`
	Networks       []Network       `json:"networks"        yaml:"networks"`
	SecurityGroups []SecurityGroup `json:"security_groups" yaml:"security_groups"`
	KeyPairs       []KeyPair       `json:"key_pairs"       yaml:"key_pairs"`
}

// FetchLaunchOptions lists flavors, active images, networks, security groups
// and key pairs together.
func FetchLaunchOptions(ctx context.Context, client Client, session *Session) (*LaunchOptions, error) {
	options := &LaunchOptions{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		options.Flavors, err = client.Compute().ListFlavors(gctx, session)

		return err
	})

	g.Go(func() error {
		var err error

		options.KeyPairs, err = client.Compute().ListKeyPairs(gctx, session)

		return err
	})

	g.Go(func() error {
		images, err := optional(client.Images().List(gctx, session))
		if err != nil {
			return err
		}

		options.Images = activeImages(images)

		return nil
	})

	g.Go(func() error {
		var err error

		options.Networks, err = optional(client.Networks().ListNetworks(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		options.SecurityGroups, err = optional(client.SecurityGroups().List(gctx, session))

		return err
	})

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("fetching launch options: %w", err)
	}

	return options, nil
}

func activeImages(images []Image) []Image {
	active := make([]Image, 0, len(images))

	for _, image := range images {
		if strings.EqualFold(image.Status, "active") {
			active = append(active, image)
		}
	}

	return active
}
