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

const (
	StorageDriverFile     = "file"
	StorageDriverPostgres = "postgres"
)

type Application struct {
	Server     Server     `koanf:"server"`
	Storage    Storage    `koanf:"storage"`
	Database   Database   `koanf:"db"`
	Projection Projection `koanf:"projection"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Storage selects where monthly finance records and budget settings live.
// Driver is either "file" (one JSON document per entity type under DataDir) or "postgres".
type Storage struct {
	Driver  string `koanf:"driver"`
	DataDir string `koanf:"datadir"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Projection struct {
	// GrowthRate is the assumed monthly growth applied when the current month is projected from the last one.
	GrowthRate float64 `koanf:"growthrate"`
	// TrailingWindow is how many recent records are averaged when a missing last month is backfilled.
	TrailingWindow int `koanf:"trailingwindow"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr: ":8181",
		},
		Storage: Storage{
			Driver:  StorageDriverFile,
			DataDir: "./db",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "finpal",
			Pass:   "",
			Name:   "finpal",
			Schema: "finpal",
		},
		Projection: Projection{
			GrowthRate:     0.05,
			TrailingWindow: 3,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
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
		Prefix: "FINPAL_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FINPAL_")), "_", ".")
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
