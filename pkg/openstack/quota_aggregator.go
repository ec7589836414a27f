package openstack

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Quota report resource labels.
const (
	QuotaInstances      = "Instances"
	QuotaVCPUs          = "vCPUs"
	QuotaRAM            = "RAM (MB)"
	QuotaVolumes        = "Volumes"
	QuotaVolumeStorage  = "Volume Storage (GB)"
	QuotaFloatingIPs    = "Floating IPs"
	QuotaNetworks       = "Networks"
	QuotaSecurityGroups = "Security Groups"
	QuotaSubnets        = "Subnets"
	QuotaPorts          = "Ports"
	QuotaRouters        = "Routers"
)

type quotaKey struct {
	label string
	key   string
}

var (
	computeQuotaKeys = []quotaKey{
		{QuotaInstances, "instances"},
		{QuotaVCPUs, "cores"},
		{QuotaRAM, "ram"},
	}
	volumeQuotaKeys = []quotaKey{
		{QuotaVolumes, "volumes"},
		{QuotaVolumeStorage, "gigabytes"},
	}
	networkQuotaKeys = []quotaKey{
		{QuotaFloatingIPs, "floatingip"},
		{QuotaNetworks, "network"},
		{QuotaSecurityGroups, "security_group"},
		{QuotaSubnets, "subnet"},
		{QuotaPorts, "port"},
		{QuotaRouters, "router"},
	}
)

type quotaSource struct {
	service string
	keys    []quotaKey
	fetch   func(ctx context.Context, session *Session, projectID string) (ServiceQuotas, error)
}

// AggregateQuotas reads compute, volume and network limits concurrently and
// merges them into one report. A failing service is logged and contributes
// no lines; the others are unaffected. Used is QuotaUnknown on every line.
// Without a project id nothing is requested.
func AggregateQuotas(ctx context.Context, quotas QuotasClient, session *Session, logger Logger) []QuotaLine {
	if session == nil || session.ProjectID == "" {
		return []QuotaLine{}
	}

	if logger == nil {
		logger = NopLogger{}
	}

	sources := []quotaSource{
		{service: ServiceCompute, keys: computeQuotaKeys, fetch: quotas.Compute},
		{service: ServiceVolume, keys: volumeQuotaKeys, fetch: quotas.Volume},
		{service: ServiceNetwork, keys: networkQuotaKeys, fetch: quotas.Network},
	}

	results := make([][]QuotaLine, len(sources))

	// errgroup.Group without a context: one branch failing must not cancel
	// the others
	var g errgroup.Group

	for i, source := range sources {
		g.Go(func() error {
			limits, err := source.fetch(ctx, session, session.ProjectID)
			if err != nil {
				logger.Warn("Failed to fetch quotas", map[string]interface{}{
					"service":    source.service,
					"project_id": session.ProjectID,
					"error":      err.Error(),
				})

				return nil
			}

			results[i] = quotaLines(source.keys, limits)

			return nil
		})
	}

	_ = g.Wait()

	lines := make([]QuotaLine, 0, len(computeQuotaKeys)+len(volumeQuotaKeys)+len(networkQuotaKeys))
	for _, result := range results {
		lines = append(lines, result...)
	}

	return lines
}

func quotaLines(keys []quotaKey, limits ServiceQuotas) []QuotaLine {
	lines := make([]QuotaLine, 0, len(keys))

	for _, k := range keys {
		limit, ok := limits[k.key]
		if !ok {
			limit = QuotaUnlimited
		}

		lines = append(lines, QuotaLine{Resource: k.label, Used: QuotaUnknown, Limit: limit})
	}

	return lines
}

// Inventory is what the caller has already listed. A nil slice means "not
// fetched" and leaves the matching usage unknown.
type Inventory struct {
	Instances      []Instance
	Flavors        []Flavor
	Volumes        []Volume
	Networks       []Network
	FloatingIPs    []FloatingIP
	SecurityGroups []SecurityGroup
}

// Usage counts consumption per quota label from the inventory.
func (inv *Inventory) Usage() map[string]int {
	usage := make(map[string]int)

	if inv.Instances != nil {
		usage[QuotaInstances] = len(inv.Instances)

		if inv.Flavors != nil {
			flavors := make(map[string]Flavor, len(inv.Flavors))
			for _, f := range inv.Flavors {
				flavors[f.ID] = f
			}

			var vcpus, ram int

			for _, instance := range inv.Instances {
				f := flavors[instance.FlavorID]
				vcpus += f.VCPUs
				ram += f.RAMMB
			}

			usage[QuotaVCPUs] = vcpus
			usage[QuotaRAM] = ram
		}
	}

	if inv.Volumes != nil {
		var gigabytes int
		for _, v := range inv.Volumes {
			gigabytes += v.SizeGB
		}

		usage[QuotaVolumes] = len(inv.Volumes)
		usage[QuotaVolumeStorage] = gigabytes
	}

	if inv.Networks != nil {
		usage[QuotaNetworks] = len(inv.Networks)
	}

	if inv.FloatingIPs != nil {
		usage[QuotaFloatingIPs] = len(inv.FloatingIPs)
	}

	if inv.SecurityGroups != nil {
		usage[QuotaSecurityGroups] = len(inv.SecurityGroups)
	}

	return usage
}

// FillQuotaUsage returns a copy of lines with Used set from usage wherever
// a count exists.
func FillQuotaUsage(lines []QuotaLine, usage map[string]int) []QuotaLine {
	filled := make([]QuotaLine, len(lines))

	for i, line := range lines {
		filled[i] = line

		if used, ok := usage[line.Resource]; ok {
			filled[i].Used = used
		}
	}

	return filled
}

// QuotaLineFor finds a line by label, case-insensitively.
func QuotaLineFor(lines []QuotaLine, resource string) (QuotaLine, bool) {
	for _, line := range lines {
		if strings.EqualFold(line.Resource, resource) {
			return line, true
		}
	}

	return QuotaLine{}, false
}
