package traefik

import (
	"fmt"
	"strings"
)

const defaultCertResolver = "letsencrypt"

// GenerateLabels returns the labels routing Hostname (and PathPrefix, if set)
// to Port of the service.
//
// Router and service names follow the pattern {project}-{serviceName}; when
// the service name already starts with the project it is used as-is.
//
// Example:
//
//	GenerateLabels(LabelParams{Project: "shop", ServiceName: "api", Hostname: "api.apps.localhost", Port: 8080})
//	// {
//	//   "traefik.enable": "true",
//	//   "traefik.http.routers.shop-api.rule": "Host(`api.apps.localhost`)",
//	//   "traefik.http.routers.shop-api.entrypoints": "web",
//	//   "traefik.http.services.shop-api.loadbalancer.server.port": "8080",
//	// }
func GenerateLabels(params LabelParams) map[string]string {
	name := routerName(params.Project, params.ServiceName)
	rule := fmt.Sprintf("Host(`%s`)", params.Hostname)
	if params.PathPrefix != "" {
		rule += fmt.Sprintf(" && PathPrefix(`%s`)", params.PathPrefix)
	}

	labels := map[string]string{
		"traefik.enable": "true",
		fmt.Sprintf("traefik.http.routers.%s.rule", name):                      rule,
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", name):               "web",
		fmt.Sprintf("traefik.http.routers.%s.service", name):                   name,
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", name): fmt.Sprintf("%d", params.Port),
	}

	if params.EnableTLS {
		resolver := params.CertResolver
		if resolver == "" {
			resolver = defaultCertResolver
		}
		secure := name + "-secure"
		labels[fmt.Sprintf("traefik.http.routers.%s.rule", secure)] = rule
		labels[fmt.Sprintf("traefik.http.routers.%s.entrypoints", secure)] = "websecure"
		labels[fmt.Sprintf("traefik.http.routers.%s.service", secure)] = name
		labels[fmt.Sprintf("traefik.http.routers.%s.tls", secure)] = "true"
		labels[fmt.Sprintf("traefik.http.routers.%s.tls.certresolver", secure)] = resolver
	}

	return labels
}

// Hostname returns the host a service is published under.
// Pattern: {serviceName}.{baseDomain}
func Hostname(serviceName, baseDomain string) string {
	return serviceName + "." + strings.TrimPrefix(baseDomain, ".")
}

func routerName(project, service string) string {
	if project == "" || service == project || strings.HasPrefix(service, project+"-") {
		return service
	}
	return project + "-" + service
}
