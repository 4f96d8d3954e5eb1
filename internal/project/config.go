package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"lunar/internal/dialect"
	"lunar/internal/parser"
)

// ErrConfigInvalid wraps every semantic problem found in lunar.toml.
var ErrConfigInvalid = errors.New("invalid lunar.toml")

// Config mirrors lunar.toml.
type Config struct {
	Parse ParseConfig `toml:"parse"`
	Files FilesConfig `toml:"files"`
}

type ParseConfig struct {
	Version   string `toml:"version"`
	Mode      string `toml:"mode"`
	MaxDepth  int    `toml:"max_depth"`
	MaxErrors int    `toml:"max_errors"`
}

type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Manifest is a loaded lunar.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used when no lunar.toml exists.
// Files on disk are read in script mode, like luaL_loadfile: a leading
// '#' line is a shebang. parser.Parse on a buffer keeps chunk mode.
func Default() Config {
	return Config{
		Parse: ParseConfig{
			Version:   "5.4",
			Mode:      "script",
			MaxDepth:  parser.DefaultMaxDepth,
			MaxErrors: 100,
		},
		Files: FilesConfig{
			Include: []string{"**/*.lua"},
		},
	}
}

// LoadConfig decodes path on top of Default and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrConfigInvalid, strings.Join(keys, ", "))
	}
	if meta.IsDefined("files", "include") && len(cfg.Files.Include) == 0 {
		return Config{}, fmt.Errorf("%s: %w: [files].include is empty", path, ErrConfigInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load finds lunar.toml above startDir and loads it. ok is false when
// there is no config; the returned manifest then carries Default().
func Load(startDir string) (*Manifest, bool, error) {
	configPath, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &Manifest{Config: Default()}, false, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   configPath,
		Root:   filepath.Dir(configPath),
		Config: cfg,
	}, true, nil
}

// Validate checks value ranges and enum strings.
func (c Config) Validate() error {
	if _, err := dialect.ParseVersion(c.Parse.Version); err != nil {
		return fmt.Errorf("%w: [parse].version: %w", ErrConfigInvalid, err)
	}
	if _, err := parser.ParseMode(c.Parse.Mode); err != nil {
		return fmt.Errorf("%w: [parse].mode: %w", ErrConfigInvalid, err)
	}
	if c.Parse.MaxDepth < 0 {
		return fmt.Errorf("%w: [parse].max_depth must be >= 0", ErrConfigInvalid)
	}
	if c.Parse.MaxErrors < 0 {
		return fmt.Errorf("%w: [parse].max_errors must be >= 0", ErrConfigInvalid)
	}
	for _, pattern := range append(append([]string(nil), c.Files.Include...), c.Files.Exclude...) {
		if _, err := path.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
			return fmt.Errorf("%w: bad glob %q", ErrConfigInvalid, pattern)
		}
	}
	return nil
}

// ParserOptions converts the [parse] table into parser options.
func (c Config) ParserOptions() (parser.Options, error) {
	version, err := dialect.ParseVersion(c.Parse.Version)
	if err != nil {
		return parser.Options{}, err
	}
	mode, err := parser.ParseMode(c.Parse.Mode)
	if err != nil {
		return parser.Options{}, err
	}
	opts := parser.Options{
		Version:  version,
		Mode:     mode,
		MaxDepth: c.Parse.MaxDepth,
	}
	if opts.MaxErrors, err = safecast.Conv[uint](c.Parse.MaxErrors); err != nil {
		return parser.Options{}, fmt.Errorf("%w: [parse].max_errors: %w", ErrConfigInvalid, err)
	}
	return opts, nil
}

// Matches reports whether rel (slash-separated, relative to the project
// root) is selected by the include/exclude globs.
func (c Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	included := len(c.Files.Include) == 0
	for _, p := range c.Files.Include {
		if MatchGlob(p, rel) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range c.Files.Exclude {
		if MatchGlob(p, rel) {
			return false
		}
	}
	return true
}

// MatchGlob matches slash-separated name against pattern. '**' as a whole
// segment matches any number of segments; other segments use path.Match.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			if len(rest) == 0 {
				return true
			}
			for i := range len(name) + 1 {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, err := path.Match(pat[0], name[0]); err != nil || !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}

// WriteDefault writes Default() into dir/lunar.toml. An existing file is
// left untouched unless force is set.
func WriteDefault(dir string, force bool) (string, error) {
	target := filepath.Join(dir, ConfigFileName)
	if !force {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%s already exists", target)
		}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(Default()); err != nil {
		return target, fmt.Errorf("%s: failed to encode TOML: %w", target, err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return target, fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
