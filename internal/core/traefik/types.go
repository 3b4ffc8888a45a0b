package traefik

// LabelParams contains parameters for generating Traefik labels.
type LabelParams struct {
	// Project is the compose project, used to keep router names unique.
	Project string

	// ServiceName is the compose service name (e.g., "shop-api").
	ServiceName string

	// Hostname is the host name routed to the service.
	Hostname string

	// PathPrefix optionally restricts the route to a path (e.g., "/api").
	PathPrefix string

	// Port is the container port to route traffic to.
	Port int

	// EnableTLS adds an HTTPS router with TLS termination.
	EnableTLS bool

	// CertResolver names the ACME resolver; "letsencrypt" when empty.
	CertResolver string
}
