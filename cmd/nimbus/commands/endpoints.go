package commands

import (
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type resolvedEndpoint struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url"  yaml:"url"`
}

// NewEndpointsCommand creates the endpoints command.
func NewEndpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "Show the endpoint chosen for each catalog service",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession()
			if err != nil {
				return err
			}

			endpoints := resolveCatalog(session.Catalog, viper.GetString("interface"), viper.GetString("region"))

			renderer := &OutputRenderer[[]resolvedEndpoint]{RenderTable: func(endpoints []resolvedEndpoint) error {
				table := newTable("Type", "Name", "URL")
				for _, e := range endpoints {
					_ = table.Append(e.Type, e.Name, orNone(e.URL))
				}

				return renderTable(table)
			}}

			return renderer.Render(endpoints)
		},
	}
}

func resolveCatalog(catalog openstack.ServiceCatalog, iface, region string) []resolvedEndpoint {
	endpoints := make([]resolvedEndpoint, 0, len(catalog))

	for _, entry := range catalog {
		url, _ := catalog.Resolve(entry.Type, iface, region)
		endpoints = append(endpoints, resolvedEndpoint{Type: entry.Type, Name: entry.Name, URL: url})
	}

	return endpoints
}
