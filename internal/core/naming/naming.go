// Package naming derives the resource and service names generators use, so
// every generator of a part agrees on them.
package naming

import (
	"regexp"
	"strings"
)

// =============================================================================
// Resource Naming Functions
// =============================================================================

var invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)

// maxNameLength is the Kubernetes limit for DNS-1035 labels.
const maxNameLength = 63

// Name joins an application name with an optional subfolder.
// Pattern: {application} or {application}-{subFolder}
//
// Example:
//
//	Name("shop", "")    // returns "shop"
//	Name("shop", "api") // returns "shop-api"
func Name(application, subFolder string) string {
	if subFolder == "" {
		return Sanitize(application)
	}
	return Sanitize(application + "-" + subFolder)
}

// ServiceName is the name of the main service of a part.
// Pattern: {application}[-{subFolder}]
func ServiceName(application, subFolder string) string {
	return Name(application, subFolder)
}

// DatabaseServiceName is the name of the database service of a part.
// Pattern: {application}[-{subFolder}]-database
//
// Example:
//
//	DatabaseServiceName("shop", "api") // returns "shop-api-database"
func DatabaseServiceName(application, subFolder string) string {
	return Sanitize(Name(application, subFolder) + "-database")
}

// DatabaseSecretName is the name of the secret holding database credentials.
// Pattern: {application}[-{subFolder}]-database-bind
func DatabaseSecretName(application, subFolder string) string {
	return Sanitize(Name(application, subFolder) + "-database-bind")
}

// Sanitize lower-cases a name and reduces it to a valid DNS-1035 label.
//
// Example:
//
//	Sanitize("My_App!") // returns "my-app"
func Sanitize(name string) string {
	s := invalidChars.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxNameLength {
		s = strings.TrimRight(s[:maxNameLength], "-")
	}
	return s
}
