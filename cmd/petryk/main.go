package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/completecity/petryk/internal/ai"
	"github.com/completecity/petryk/internal/database"
	"github.com/completecity/petryk/internal/mailer"
	"github.com/completecity/petryk/internal/server"
	"github.com/completecity/petryk/internal/storage"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

const dbname = "petryk.db"

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "petryk",
		Short:   "Petryk memory server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	initCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(initCmd)

	reindexCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(reindexCmd)

	serverCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

// konfiguration loads the defaults, the optional YAML file given with -c and
// finally the PETRYK_* environment. Optional third-party keys left empty only
// degrade their feature, they never fail startup.
func konfiguration() (*koanf.Koanf, error) {
	konf := koanf.New(".")

	err := konf.Load(confmap.Provider(map[string]interface{}{
		"address":         ":8080",
		"database_path":   "",
		"s3_endpoint":     "localhost:9000",
		"s3_access_key":   "minioadmin",
		"s3_secret_key":   "minioadmin",
		"s3_bucket":       "petryk-uploads",
		"s3_use_ssl":      false,
		"presign_expiry":  time.Hour,
		"mailgun_api_key": "",
		"mailgun_domain":  "",
		"mailgun_from":    "",
		"notify_email":    "",
		"openai_api_key":  "",
		"openai_base_url": "https://api.openai.com/v1",
		"openai_model":    "gpt-4o-mini",
		"gemini_api_key":  "",
		"gemini_base_url": "https://generativelanguage.googleapis.com",
		"gemini_model":    "gemini-2.5-flash",
	}, "."), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not load default configuration")
	}

	if cfg != "" {
		if err := konf.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "could not load configuration file")
		}
	}

	err = konf.Load(env.Provider("PETRYK_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PETRYK_"))
	}), nil)
	return konf, errors.Wrap(err, "could not load environment configuration")
}

func dbnameWithPath(path string) string {
	if len(path) == 0 {
		return dbname
	}
	return filepath.Join(path, dbname)
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			return database.StormInit(dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			return database.StormReIndex(dbnameWithPath(konf.String("database_path")))
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := konfiguration()
			if err != nil {
				return err
			}

			db, err := database.StormOpen(dbnameWithPath(konf.String("database_path")))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			store, err := storage.New(storage.Config{
				Endpoint:  konf.String("s3_endpoint"),
				AccessKey: konf.String("s3_access_key"),
				SecretKey: konf.String("s3_secret_key"),
				Bucket:    konf.String("s3_bucket"),
				UseSSL:    konf.Bool("s3_use_ssl"),
			})
			if err != nil {
				return errors.Wrap(err, "could not open object storage")
			}

			engine := server.EchoEngine(server.Controller{
				Version:  version,
				Database: db,
				Storage:  store,
				Commentator: ai.NewCommentator(
					konf.String("openai_base_url"),
					konf.String("openai_api_key"),
					konf.String("openai_model"),
				),
				Describer: ai.NewDescriber(
					konf.String("gemini_base_url"),
					konf.String("gemini_api_key"),
					konf.String("gemini_model"),
				),
				Mailer: mailer.New(
					konf.String("mailgun_api_key"),
					konf.String("mailgun_domain"),
					konf.String("mailgun_from"),
					konf.String("notify_email"),
				),
				PresignExpiry: konf.Duration("presign_expiry"),
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			log.Printf("Server listening on %s\n", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					log.Printf("Removing existing %s\n", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
