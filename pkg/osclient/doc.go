// Package osclient is the entry point for constructing a gateway client that
// implements the openstack.Client interface.
//
// It wires configuration, the HTTP transport and the per-service adapters on
// top of the types and interfaces defined in the openstack package. The
// client holds no credentials: the token and service catalog travel with
// every call in an openstack.Session, so one client can serve many users.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/kaigouthro/nimbus/pkg/openstack"
//	  "github.com/kaigouthro/nimbus/pkg/osclient"
//	)
//
//	func example(token string, catalog openstack.ServiceCatalog) {
//	  ctx := context.Background()
//
//	  cli, err := osclient.New(&openstack.Config{Region: "RegionOne"})
//	  if err != nil { log.Fatal(err) }
//
//	  session := &openstack.Session{Token: token, Catalog: catalog, ProjectID: "p-1"}
//
//	  servers, err := cli.Compute().ListInstances(ctx, session)
//	  if err != nil { log.Fatal(err) }
//	  _ = servers
//
//	  // Quota limits from compute, block storage and networking in one report.
//	  lines := openstack.AggregateQuotas(ctx, cli.Quotas(), session, cli.Logger())
//	  _ = lines
//	}
//
// Set NIMBUS_DEBUG=true to log every request and response through the
// configured logger.
package osclient
