package compose

import (
	"fmt"
	"strings"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/naming"
	"github.com/artpar/stackgen/internal/core/traefik"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort       = 8080
	databaseGenerator = "capability-database"
	restartPolicy     = "unless-stopped"
)

// databaseImages maps a databaseType to the image used for local runs.
var databaseImages = map[string]struct {
	image string
	data  string
}{
	"postgresql": {"postgres:16", "/var/lib/postgresql/data"},
	"mysql":      {"mysql:8", "/var/lib/mysql"},
}

// =============================================================================
// Export Functions
// =============================================================================

// FromApplication builds a compose file with one routable service per part of
// app, plus one database service per part that applied capability-database.
//
// Service names follow naming.Name; each part is built from its subfolder (or
// the application root) and routed by Traefik under {service}.{BaseDomain}.
func FromApplication(app *descriptor.Application, opts Options) *File {
	port := opts.Port
	if port == 0 {
		port = defaultPort
	}
	project := naming.Sanitize(app.Application)
	f := &File{
		Name:     project,
		Services: make(map[string]*Service),
	}

	for _, part := range app.Parts {
		name := naming.ServiceName(app.Application, part.FolderName())
		context := "."
		if !part.InRoot() {
			context = "./" + part.FolderName()
		}
		svc := &Service{
			Image:   name + ":latest",
			Build:   &Build{Context: context},
			Restart: restartPolicy,
			Environment: map[string]string{
				"APP_NAME": app.Application,
			},
		}
		if rt := part.RuntimeName(); rt != "" {
			svc.Environment["RUNTIME"] = rt
		}
		if opts.BaseDomain != "" {
			svc.Labels = traefik.GenerateLabels(traefik.LabelParams{
				Project:     project,
				ServiceName: name,
				Hostname:    traefik.Hostname(name, opts.BaseDomain),
				Port:        port,
				EnableTLS:   opts.EnableTLS,
			})
		} else {
			svc.Ports = []string{fmt.Sprintf("%d", port)}
		}

		if db, ok := databaseOf(part); ok {
			dbName := naming.DatabaseServiceName(app.Application, part.FolderName())
			f.Services[dbName] = databaseService(dbName, db)
			if f.Volumes == nil {
				f.Volumes = make(map[string]*Volume)
			}
			f.Volumes[dbName+"-data"] = &Volume{}
			svc.DependsOn = append(svc.DependsOn, dbName)
			svc.Environment["DB_HOST"] = dbName
		}
		f.Services[name] = svc
	}
	return f
}

func databaseOf(part *descriptor.Part) (string, bool) {
	for _, g := range part.Generators {
		if g.Module != databaseGenerator {
			continue
		}
		db := g.Props.String("databaseType")
		if _, ok := databaseImages[db]; ok {
			return db, true
		}
	}
	return "", false
}

func databaseService(name, dbType string) *Service {
	img := databaseImages[dbType]
	env := map[string]string{}
	switch dbType {
	case "postgresql":
		env["POSTGRES_DB"] = "my_data"
		env["POSTGRES_USER"] = "dbuser"
		env["POSTGRES_PASSWORD"] = "secret"
	case "mysql":
		env["MYSQL_DATABASE"] = "my_data"
		env["MYSQL_USER"] = "dbuser"
		env["MYSQL_PASSWORD"] = "secret"
		env["MYSQL_ROOT_PASSWORD"] = "secret"
	}
	return &Service{
		Image:       img.image,
		Environment: env,
		Volumes:     []string{name + "-data:" + img.data},
		Restart:     restartPolicy,
	}
}

// Render marshals the file to YAML.
func (f *File) Render() ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
