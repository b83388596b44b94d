package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Addr     string   `koanf:"addr"`
	Timezone string   `koanf:"timezone"`
	Database Database `koanf:"db"`
	Google   Google   `koanf:"google"`
	CalDAV   CalDAV   `koanf:"caldav"`
	ICS      ICS      `koanf:"ics"`
	Refresh  Refresh  `koanf:"refresh"`
	Timing   Timing   `koanf:"timing"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
	// MaxConns caps the connection pool.
	MaxConns int32 `koanf:"maxconns"`
}

type Google struct {
	ClientId     string   `koanf:"clientid"`
	ClientSecret string   `koanf:"clientsecret"`
	RefreshToken string   `koanf:"refreshtoken"`
	Calendars    []string `koanf:"calendars"`
}

// Enabled reports whether Google calendars should be read. The authorization itself
// comes from the refresh token or from the OAuth flow.
func (g Google) Enabled() bool {
	return g.ClientId != "" && len(g.Calendars) > 0
}

type CalDAV struct {
	URL       string   `koanf:"url"`
	Username  string   `koanf:"username"`
	Password  string   `koanf:"password"`
	Calendars []string `koanf:"calendars"`
}

func (c CalDAV) Enabled() bool {
	return c.URL != ""
}

type ICS struct {
	Sources []ICSSource `koanf:"sources"`
	// MaxOccurrences caps recurrence expansion per event.
	MaxOccurrences int `koanf:"maxoccurrences"`
}

type ICSSource struct {
	Id  string `koanf:"id"`
	URL string `koanf:"url"`
}

type Refresh struct {
	Schedule   string `koanf:"schedule"`
	WindowDays int    `koanf:"windowdays"`
}

type Timing struct {
	Countdown string `koanf:"countdown"`
	Classify  string `koanf:"classify"`
}

// Location resolves the configured display timezone, falling back to UTC.
func (a Application) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, using UTC: %v", a.Timezone, err)
		return time.UTC
	}
	return loc
}

func Defaults() Application {
	return Application{
		Host:     "http://localhost:3000",
		Addr:     ":8181",
		Timezone: "Asia/Dhaka",
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "agenda",
			Pass:     "",
			Name:     "agenda",
			Schema:   "agenda",
			MaxConns: 10,
		},
		ICS: ICS{
			MaxOccurrences: 500,
		},
		Refresh: Refresh{
			Schedule:   "@every 2m",
			WindowDays: 30,
		},
		Timing: Timing{
			Countdown: "@every 1s",
			Classify:  "@every 5s",
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
		Prefix: "AGENDA_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "AGENDA_")), "_", ".")
			// comma separated lists, e.g. AGENDA_GOOGLE_CALENDARS=primary,work
			if strings.HasSuffix(k, ".calendars") {
				return k, strings.Split(v, ",")
			}
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
