package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/atomicstack/itree/internal/app"
	"github.com/atomicstack/itree/internal/theme"
	"github.com/atomicstack/itree/internal/tree"
	"github.com/atomicstack/itree/internal/walk"
)

// Version is reported by --version.
var Version = "dev"

// ErrVersion is returned by LoadArgs when --version was requested.
var ErrVersion = errors.New("version requested")

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const envPrefix = "ITREE_"

const (
	keyNoInteract    = "no-interact"
	keyQuiet         = "quiet"
	keyOnlyDirs      = "only-dirs"
	keyMaxLevel      = "max-level"
	keyFollowLinks   = "follow-links"
	keyMaxFileSize   = "max-filesize"
	keyHidden        = "hidden"
	keyNoIgnore      = "no-ignore"
	keyNoExclude     = "no-exclude"
	keyIgnore        = "ignore"
	keyBgColor       = "bg-color"
	keyFgColor       = "fg-color"
	keyFoldDepth     = "fold-depth"
	keyCaseSensitive = "case-sensitive"
	keyDirsFirst     = "dirs-first"
	keyFormat        = "format"
	keyWatch         = "watch"
	keyFooter        = "footer"
	keyWidth         = "width"
	keyHeight        = "height"
	keyTrace         = "trace"
	keyLogFile       = "log-file"
	keyConfig        = "config"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "itree [root]",
		Short:         "Interactively browse a directory tree",
		Long:          "itree prints a directory hierarchy as a tree and lets you fold and navigate it from the keyboard.",
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := cmd.Flags()
	fs.Bool(keyNoInteract, false, "print the tree and summary without entering interactive mode")
	fs.BoolP(keyQuiet, "q", false, "print only the summary line")
	fs.Bool(keyOnlyDirs, false, "list directories only")
	fs.IntP(keyMaxLevel, "L", 0, "descend at most this many levels (0 for no limit)")
	fs.BoolP(keyFollowLinks, "l", false, "follow symbolic links to directories")
	fs.String(keyMaxFileSize, "", "skip files larger than this size, e.g. 10MB")
	fs.Bool(keyHidden, false, "include hidden files")
	fs.Bool(keyNoIgnore, false, "do not respect .gitignore and .ignore files")
	fs.Bool(keyNoExclude, false, "do not respect .git/info/exclude")
	fs.StringArrayP(keyIgnore, "I", nil, "additional gitignore-style pattern (repeatable)")
	fs.StringP(keyBgColor, "c", "blue", "background colour of the focused line")
	fs.StringP(keyFgColor, "f", "white", "foreground colour of the tree")
	fs.Int(keyFoldDepth, 0, "collapse directories at this depth and below on startup (0 expands all)")
	fs.Bool(keyCaseSensitive, false, "sort names case-sensitively")
	fs.Bool(keyDirsFirst, true, "list directories before files")
	fs.String(keyFormat, "text", "non-interactive output format: text, json or yaml")
	fs.Bool(keyWatch, false, "report filesystem changes while browsing")
	fs.Bool(keyFooter, false, "show the key hint footer")
	fs.Int(keyWidth, 0, "viewport width in cells (0 uses terminal width)")
	fs.Int(keyHeight, 0, "viewport height in rows (0 uses terminal height)")
	fs.Bool(keyTrace, false, "enable verbose trace logging")
	fs.String(keyLogFile, "", "path to the log file")
	fs.String(keyConfig, "", "path to a YAML config file")
	fs.SortFlags = false
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()
	return cmd
}

// Usage returns the command usage text.
func Usage() string {
	cmd := newCommand()
	return cmd.Long + "\n\n" + cmd.UsageString()
}

// LoadArgs allows tests to supply specific args/environment. Values resolve
// as flag, then ITREE_* environment, then config file, then default.
func LoadArgs(args []string, environ []string) (Config, error) {
	cmd := newCommand()
	fs := cmd.Flags()
	if err := cmd.ParseFlags(args); err != nil {
		return Config{}, err
	}
	if help, _ := fs.GetBool("help"); help {
		return Config{}, pflag.ErrHelp
	}
	if version, _ := fs.GetBool("version"); version {
		return Config{}, ErrVersion
	}
	positional := fs.Args()
	if err := cmd.ValidateArgs(positional); err != nil {
		return Config{}, err
	}

	env := parseEnv(environ)
	v := viper.New()
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "version" {
			return
		}
		v.SetDefault(f.Name, f.DefValue)
	})
	v.SetDefault(keyIgnore, []string{})

	configPath, _ := fs.GetString(keyConfig)
	if configPath == "" {
		configPath = env[envKey(keyConfig)]
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}
	overrides, err := envOverrides(fs, env)
	if err != nil {
		return Config{}, err
	}
	if len(overrides) > 0 {
		if err := v.MergeConfigMap(overrides); err != nil {
			return Config{}, fmt.Errorf("merge environment: %w", err)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	maxSize, err := parseSize(v.GetString(keyMaxFileSize))
	if err != nil {
		return Config{}, err
	}

	custom := v.GetStringSlice(keyIgnore)
	if fs.Changed(keyIgnore) {
		custom, _ = fs.GetStringArray(keyIgnore)
	}

	root := "."
	if len(positional) == 1 {
		root = positional[0]
	}

	cfg := Config{
		App: app.Config{
			Root: root,
			Walk: walk.Options{
				Hidden:      v.GetBool(keyHidden),
				NoIgnore:    v.GetBool(keyNoIgnore),
				NoExclude:   v.GetBool(keyNoExclude),
				Custom:      custom,
				MaxDepth:    v.GetInt(keyMaxLevel),
				FollowLinks: v.GetBool(keyFollowLinks),
				MaxFileSize: maxSize,
				OnlyDirs:    v.GetBool(keyOnlyDirs),
			},
			Sort: tree.SortOptions{
				CaseSensitive: v.GetBool(keyCaseSensitive),
				DirsFirst:     v.GetBool(keyDirsFirst),
			},
			FoldDepth:  v.GetInt(keyFoldDepth),
			NoInteract: v.GetBool(keyNoInteract),
			Quiet:      v.GetBool(keyQuiet),
			Format:     strings.ToLower(v.GetString(keyFormat)),
			Watch:      v.GetBool(keyWatch),
			Width:      v.GetInt(keyWidth),
			Height:     v.GetInt(keyHeight),
			ShowFooter: v.GetBool(keyFooter),
			Foreground: v.GetString(keyFgColor),
			Background: v.GetString(keyBgColor),
		},
		Logging: Logging{
			FilePath: v.GetString(keyLogFile),
			Trace:    v.GetBool(keyTrace),
		},
		Flags: make(map[string]string),
		Args:  append([]string(nil), args...),
	}
	fs.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "help", "version":
		case keyIgnore:
			cfg.Flags[f.Name] = strings.Join(cfg.App.Walk.Custom, ",")
		default:
			cfg.Flags[f.Name] = v.GetString(f.Name)
		}
	})
	return cfg, nil
}

func envKey(name string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// envOverrides collects ITREE_* values for every known flag, typed to match
// the flag so they merge over config file values. Ignore patterns are comma
// separated.
func envOverrides(fs *pflag.FlagSet, env map[string]string) (map[string]any, error) {
	out := make(map[string]any)
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		switch {
		case err != nil:
			return
		case f.Name == keyConfig, f.Name == "help", f.Name == "version":
			return
		}
		key := envKey(f.Name)
		raw, ok := env[key]
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		raw = strings.TrimSpace(raw)
		switch f.Value.Type() {
		case "bool":
			b, perr := strconv.ParseBool(raw)
			if perr != nil {
				err = fmt.Errorf("invalid %s %q: %w", key, raw, perr)
				return
			}
			out[f.Name] = b
		case "int":
			n, perr := strconv.Atoi(raw)
			if perr != nil {
				err = fmt.Errorf("invalid %s %q: %w", key, raw, perr)
				return
			}
			out[f.Name] = n
		case "stringArray":
			var patterns []any
			for _, p := range strings.Split(raw, ",") {
				if p = strings.TrimSpace(p); p != "" {
					patterns = append(patterns, p)
				}
			}
			out[f.Name] = patterns
		default:
			out[f.Name] = raw
		}
	})
	return out, err
}

func parseSize(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", keyMaxFileSize, raw, err)
	}
	return n, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return values
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	switch {
	case errors.Is(err, pflag.ErrHelp):
		fmt.Fprint(os.Stdout, Usage())
		os.Exit(0)
	case errors.Is(err, ErrVersion):
		fmt.Fprintf(os.Stdout, "itree %s\n", Version)
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks ranges and enumerations and resolves colour names in place.
func Validate(cfg *Config) error {
	a := &cfg.App
	for name, value := range map[string]int{
		keyMaxLevel:  a.Walk.MaxDepth,
		keyFoldDepth: a.FoldDepth,
		keyWidth:     a.Width,
		keyHeight:    a.Height,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0 (got %d)", name, value)
		}
	}
	switch a.Format {
	case app.FormatText, app.FormatJSON, app.FormatYAML:
	default:
		return fmt.Errorf("%s must be one of text, json, yaml (got %q)", keyFormat, a.Format)
	}
	if a.NoInteract && a.Quiet {
		return fmt.Errorf("--%s and --%s cannot be combined", keyNoInteract, keyQuiet)
	}
	fg, err := theme.ResolveColor(a.Foreground)
	if err != nil {
		return fmt.Errorf("%s: %w", keyFgColor, err)
	}
	bg, err := theme.ResolveColor(a.Background)
	if err != nil {
		return fmt.Errorf("%s: %w", keyBgColor, err)
	}
	a.Foreground, a.Background = fg, bg
	return nil
}
