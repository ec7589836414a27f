package openstack

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Overview is the project dashboard: the main resource lists plus the quota
// report with usage filled in from them.
type Overview struct {
	Instances []Instance  `json:"instances" yaml:"instances"`
	Flavors   []Flavor    `json:"flavors"   yaml:"flavors"`
	Volumes   []Volume    `json:"volumes"   yaml:"volumes"`
	Networks  []Network   `json:"networks"  yaml:"networks"`
	Quotas    []QuotaLine `json:"quotas"    yaml:"quotas"`
}

// FetchOverview lists everything concurrently. A service absent from the
// catalog yields an empty list; any other failure fails the overview and
// cancels the remaining calls. Quota failures only drop quota lines.
func FetchOverview(ctx context.Context, client Client, session *Session) (*Overview, error) {
	overview := &Overview{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		overview.Instances, err = optional(client.Compute().ListInstances(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		overview.Flavors, err = optional(client.Compute().ListFlavors(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		overview.Volumes, err = optional(client.Volumes().List(gctx, session))

		return err
	})

	g.Go(func() error {
		var err error

		overview.Networks, err = optional(client.Networks().ListNetworks(gctx, session))

		return err
	})

	g.Go(func() error {
		overview.Quotas = AggregateQuotas(gctx, client.Quotas(), session, client.Logger())

		return nil
	})

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("fetching overview: %w", err)
	}

	inventory := Inventory{
		Instances: overview.Instances,
		Flavors:   overview.Flavors,
		Volumes:   overview.Volumes,
		Networks:  overview.Networks,
	}
	overview.Quotas = FillQuotaUsage(overview.Quotas, inventory.Usage())

	return overview, nil
}

// optional turns a missing catalog endpoint into an empty list.
func optional[T any](items []T, err error) ([]T, error) {
	if errors.Is(err, ErrEndpointNotFound) {
		return []T{}, nil
	}

	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}
