package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func TestImagesClient_List(t *testing.T) {
	t.Parallel()

	gateway, session, _ := newTestGateway(t, routes(t, map[string]http.HandlerFunc{
		"GET /image/v2/images": respondJSON(http.StatusOK, `{"images":[
			{"id":"img-1","name":"ubuntu-24.04","status":"active","visibility":"public","size":2361393152,
			 "min_disk":10,"min_ram":"","disk_format":"qcow2","container_format":"bare","os_distro":"ubuntu",
			 "owner":"admin","created_at":"2024-05-01T00:00:00Z"},
			{"id":"img-2","name":null,"status":"queued","visibility":"private","size":null,"min_disk":0,"min_ram":0}
		]}`),
	}))

	images, err := gateway.Images().List(context.Background(), session)
	require.NoError(t, err)

	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	want := []openstack.Image{
		{
			ID: "img-1", Name: "ubuntu-24.04", Status: "active", Visibility: "public", SizeBytes: 2361393152,
			MinDiskGB: 10, DiskFormat: "qcow2", ContainerFormat: "bare", OSDistro: "ubuntu", Owner: "admin",
			CreatedAt: &created,
		},
		{ID: "img-2", Status: "queued", Visibility: "private"},
	}

	if diff := cmp.Diff(want, images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
}
