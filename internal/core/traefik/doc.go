// Package traefik provides pure functions for generating Traefik reverse
// proxy labels for the services of an exported docker-compose file.
//
// # Functions
//
//   - GenerateLabels: Traefik labels routing a host name to a service port
//   - Hostname: the host name a service is published under
//
// # Usage
//
// The compose export attaches these labels to every routable service:
//
//	labels := traefik.GenerateLabels(traefik.LabelParams{
//	    Project:     "shop",
//	    ServiceName: "shop-api",
//	    Hostname:    traefik.Hostname("shop-api", "apps.localhost"),
//	    Port:        8080,
//	})
package traefik
