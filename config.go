package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/huujin/valorant-card/session"
)

type Config struct {
	allowedOrigins []string
	bind           string
	catalog        string
	configFile     string
	envFile        string
	port           int
	prefix         string
	profile        bool
	rosterCapacity int
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rosterCapacity < 1 {
		return fmt.Errorf("invalid roster capacity (must be at least 1): %d", c.rosterCapacity)
	}
	if len(c.allowedOrigins) == 0 {
		return errors.New("at least one --allowed-origins entry is required")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// applySettings copies env and config file values onto flags the user did
// not set. A flag already set keeps its value, so the first source to set a
// flag wins: command line, then environment, then config file.
func applySettings(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if f.Changed || !v.IsSet(f.Name) {
			return
		}

		val := fmt.Sprintf("%v", v.Get(f.Name))
		if f.Value.Type() == "stringSlice" {
			val = strings.Join(v.GetStringSlice(f.Name), ",")
		}
		_ = fs.Set(f.Name, val)
	})
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("VALORANT_CARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "valorant-card",
		Short:         "Serves a real-time Valorant map veto for two captains and their audience.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()

			applySettings(v, fs)

			if err := loadEnvFile(cfg.envFile); err != nil {
				return err
			}

			if cfg.configFile != "" {
				v.SetConfigFile(cfg.configFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config file %s: %w", cfg.configFile, err)
				}
			}

			applySettings(v, fs)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			configureLogging(cfg)
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", []string{"*"}, "origins allowed to connect, comma-separated (env: VALORANT_CARD_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: VALORANT_CARD_BIND)")
	fs.StringVar(&cfg.catalog, "catalog", "", "map pool file (.yaml, .toml or .json); built-in pool when empty (env: VALORANT_CARD_CATALOG)")
	fs.StringVar(&cfg.configFile, "config", "", "optional config file with the same keys as the flags (env: VALORANT_CARD_CONFIG)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "dotenv file loaded before reading the environment, ignored if missing (env: VALORANT_CARD_ENV_FILE)")
	fs.IntVarP(&cfg.port, "port", "p", 3000, "port to listen on (env: VALORANT_CARD_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: VALORANT_CARD_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: VALORANT_CARD_PROFILE)")
	fs.IntVar(&cfg.rosterCapacity, "roster-capacity", session.DefaultRosterCapacity, "maximum tournament registrations (env: VALORANT_CARD_ROSTER_CAPACITY)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: VALORANT_CARD_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: VALORANT_CARD_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: VALORANT_CARD_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: VALORANT_CARD_VERSION)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("valorant-card v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
