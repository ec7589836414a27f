package openstack

import "strings"

// API version segments for services whose catalog URL may omit them.
const (
	NetworkAPIVersion = "v2.0"
	ImageAPIVersion   = "v2"
)

// BuildPath joins a catalog base URL, a version segment and a resource path.
// The version is inserted only when the base does not already end with it.
//
//	BuildPath("http://host/network", "v2.0", "networks")      // http://host/network/v2.0/networks
//	BuildPath("http://host/network/v2.0", "v2.0", "/networks") // http://host/network/v2.0/networks
func BuildPath(baseURL, version, resourcePath string) string {
	base := trimTrailingSlashes(baseURL)
	resource := strings.TrimLeft(resourcePath, "/")

	if version == "" || strings.HasSuffix(base, "/"+version) {
		return base + "/" + resource
	}

	return base + "/" + version + "/" + resource
}

// JoinPath appends resource segments to a base URL that already carries its
// version, as compute and block storage catalog URLs do.
func JoinPath(baseURL string, segments ...string) string {
	var b strings.Builder

	b.WriteString(trimTrailingSlashes(baseURL))

	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		if segment == "" {
			continue
		}

		b.WriteByte('/')
		b.WriteString(segment)
	}

	return b.String()
}
