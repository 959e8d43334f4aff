package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server  Server  `koanf:"server"`
	Storage Storage `koanf:"storage"`
	Auth    Auth    `koanf:"auth"`
}

type Server struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Storage selects the snapshot backend: "bolt" (default), "postgres", or
// "memory" (demo mode, nothing survives a restart).
type Storage struct {
	Type     string   `koanf:"type"`
	Bolt     Bolt     `koanf:"bolt"`
	Postgres Postgres `koanf:"postgres"`
}

type Bolt struct {
	Path string `koanf:"path"`
}

type Postgres struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Auth struct {
	// ServiceUrl is the base URL of the external auth service.
	ServiceUrl string `koanf:"serviceurl"`
	// JwtSecret verifies the session tokens the auth service issues.
	JwtSecret string `koanf:"jwtsecret"`
	// TokenPath is the bolt file caching the current session token.
	TokenPath string `koanf:"tokenpath"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Host: "",
			Port: 8181,
		},
		Storage: Storage{
			Type: "bolt",
			Bolt: Bolt{
				Path: "storage/planhub.db",
			},
			Postgres: Postgres{
				Host:   "localhost",
				Port:   5432,
				User:   "planhub",
				Pass:   "",
				Name:   "planhub",
				Schema: "planhub",
			},
		},
		Auth: Auth{
			ServiceUrl: "http://localhost:5000/api",
			TokenPath:  "storage/session.db",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "PLANHUB_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "PLANHUB_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
