package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigRelPath  = ".packetdoc/config.yaml"
	defaultCatalogRelPath = ".packetdoc/catalog.db"
)

type PacketsConfig struct {
	RootNamespace string   `yaml:"root_namespace" validate:"required"`
	Servers       []string `yaml:"servers" validate:"min=1,dive,required"`
	Order         string   `yaml:"order" validate:"oneof=name declaration"`
}

type OutputConfig struct {
	Dir       string   `yaml:"dir" validate:"required"`
	Formats   []string `yaml:"formats" validate:"min=1,dive,oneof=markdown yaml"`
	LinkStyle string   `yaml:"link_style" validate:"oneof=wiki markdown"`
	IndexName string   `yaml:"index_name" validate:"required,excludesall=/\\"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Packets PacketsConfig `yaml:"packets"`
	Output  OutputConfig  `yaml:"output"`
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// Load loads YAML config, then applies env overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigRelPath)
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Packets.RootNamespace == "" {
		c.Packets.RootNamespace = "Rhisis.Network.Packets"
	}
	if len(c.Packets.Servers) == 0 {
		c.Packets.Servers = []string{"Login", "Cluster", "World"}
	}
	if c.Packets.Order == "" {
		c.Packets.Order = "name"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"markdown"}
	}
	if c.Output.LinkStyle == "" {
		c.Output.LinkStyle = "wiki"
	}
	if c.Output.IndexName == "" {
		c.Output.IndexName = "Packets"
	}
	if c.Catalog.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Catalog.Path = filepath.Join(home, defaultCatalogRelPath)
		}
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks field constraints and that the output dir is writable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", yamlPath(fe.Namespace()), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir cannot be empty")
	}

	if err := ensureWritableDir(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir not writable: %w", err)
	}
	return nil
}

// ValidateCatalog enforces requirements of commands that use the catalog.
func (c *Config) ValidateCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path cannot be empty")
	}
	return os.MkdirAll(filepath.Dir(c.Catalog.Path), 0o755)
}

// HasFormat reports whether format is enabled in output.formats.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// yamlPath turns "Config.Output.LinkStyle" into "output.linkstyle".
func yamlPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func applyEnvOverrides(c *Config) {
	setString(&c.Packets.RootNamespace, "PACKETDOC_PACKETS_ROOT_NAMESPACE")
	setList(&c.Packets.Servers, "PACKETDOC_PACKETS_SERVERS")
	setString(&c.Packets.Order, "PACKETDOC_PACKETS_ORDER")
	setString(&c.Output.Dir, "PACKETDOC_OUTPUT_DIR")
	setList(&c.Output.Formats, "PACKETDOC_OUTPUT_FORMATS")
	setString(&c.Output.LinkStyle, "PACKETDOC_OUTPUT_LINK_STYLE")
	setString(&c.Output.IndexName, "PACKETDOC_OUTPUT_INDEX_NAME")
	setString(&c.Catalog.Path, "PACKETDOC_CATALOG_PATH")
	setString(&c.Server.Host, "PACKETDOC_SERVER_HOST")
	setInt(&c.Server.Port, "PACKETDOC_SERVER_PORT")
	setString(&c.Log.Level, "PACKETDOC_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// setList reads a comma separated list.
func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
