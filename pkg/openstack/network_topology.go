package openstack

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kaigouthro/nimbus/internal/constants"
	"golang.org/x/sync/errgroup"
)

// EnrichNetworks returns copies of networks annotated with their subnets and
// the routers that have an interface on them. With EnrichBestEffort a failed
// lookup is logged and the annotation stays empty; with EnrichStrict it
// fails the call. An empty policy uses the client's default.
func EnrichNetworks(ctx context.Context, client Client, session *Session, networks []Network, policy EnrichmentPolicy) ([]Network, error) {
	if policy == "" {
		policy = client.EnrichmentPolicy()
	}

	logger := client.Logger()
	enriched := make([]Network, len(networks))
	copy(enriched, networks)

	// tolerate decides whether err stops the enrichment
	tolerate := func(msg string, fields map[string]interface{}, err error) error {
		if policy == EnrichStrict {
			return err
		}

		fields["error"] = err.Error()
		logger.Warn(msg, fields)

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.EnrichmentConcurrency)

	for i := range enriched {
		if len(enriched[i].SubnetIDs) == 0 {
			enriched[i].Subnets = []Subnet{}

			continue
		}

		g.Go(func() error {
			subnets, err := client.Networks().ListSubnets(gctx, session, enriched[i].ID)
			if err != nil {
				enriched[i].Subnets = []Subnet{}

				return tolerate("Failed to fetch subnets for network", map[string]interface{}{
					"network_id": enriched[i].ID,
				}, fmt.Errorf("subnets of network %s: %w", enriched[i].ID, err))
			}

			enriched[i].Subnets = subnets

			return nil
		})
	}

	var routersByNetwork map[string][]RouterRef

	g.Go(func() error {
		var err error

		routersByNetwork, err = routerAttachments(gctx, client, session, tolerate)

		return err
	})

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("enriching networks: %w", err)
	}

	for i := range enriched {
		enriched[i].Routers = routersByNetwork[enriched[i].ID]
		if enriched[i].Routers == nil {
			enriched[i].Routers = []RouterRef{}
		}
	}

	return enriched, nil
}

// routerAttachments maps network ids to the routers with an interface port
// on them, each router at most once per network.
func routerAttachments(
	ctx context.Context,
	client Client,
	session *Session,
	tolerate func(string, map[string]interface{}, error) error,
) (map[string][]RouterRef, error) {
	attached := make(map[string][]RouterRef)

	routers, err := client.Networks().ListRouters(ctx, session)
	if err != nil {
		return attached, tolerate("Failed to fetch routers", map[string]interface{}{}, fmt.Errorf("routers: %w", err))
	}

	var mu sync.Mutex

	seen := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.EnrichmentConcurrency)

	for _, router := range routers {
		g.Go(func() error {
			ports, err := client.Networks().ListPorts(gctx, session, &PortFilter{
				DeviceID:    router.ID,
				DeviceOwner: constants.DeviceOwnerRouterInterface,
			})
			if err != nil {
				return tolerate("Failed to fetch router interface ports", map[string]interface{}{
					"router_id": router.ID,
				}, fmt.Errorf("ports of router %s: %w", router.ID, err))
			}

			mu.Lock()
			defer mu.Unlock()

			for _, port := range ports {
				key := port.NetworkID + "/" + router.ID
				if seen[key] {
					continue
				}

				seen[key] = true
				attached[port.NetworkID] = append(attached[port.NetworkID], RouterRef{
					ID:              router.ID,
					Name:            router.Name,
					ExternalGateway: router.ExternalGateway,
				})
			}

			return nil
		})
	}

	return attached, g.Wait()
}

// PickExternalNetwork chooses the pool for a new floating IP: a network
// flagged external, else one whose name suggests it.
func PickExternalNetwork(networks []Network) (*Network, error) {
	for i := range networks {
		if networks[i].IsExternal {
			return &networks[i], nil
		}
	}

	for i := range networks {
		name := strings.ToLower(networks[i].Name)
		if strings.Contains(name, "public") || strings.Contains(name, "ext") {
			return &networks[i], nil
		}
	}

	return nil, ErrNoExternalNetwork
}
