package device

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Config holds image build configuration
type Config struct {
	WorkingDir string `mapstructure:"working_dir"`
	Table      string `mapstructure:"table"`
	BlockSize  uint64 `mapstructure:"block_size"`
	ImageGiB   uint64 `mapstructure:"image_gib"`
	HostOutDir string `mapstructure:"host_out_dir"`
	Strict     bool   `mapstructure:"strict"`

	// Partition entry array shape; 128 entries of 128 bytes unless configured
	TableLength uint32 `mapstructure:"table_length"`
	EntrySize   uint32 `mapstructure:"entry_size"`

	Binaries payload.Binaries `mapstructure:"binaries"`
}

// LoadConfig loads image build configuration using Viper
func LoadConfig() (*Config, error) {
	return LoadConfigWith(viper.GetViper())
}

// LoadConfigWith loads configuration into the given Viper instance
func LoadConfigWith(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("gptimage-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.gptimage")
		v.AddConfigPath("/etc/gptimage")
	}

	// Set defaults
	v.SetDefault("working_dir", os.Getenv("OUT"))
	v.SetDefault("table", "partition.tbl")
	v.SetDefault("block_size", types.DefaultBlockSize)
	v.SetDefault("image_gib", types.DefaultImageGiB)
	v.SetDefault("host_out_dir", os.Getenv("ANDROID_HOST_OUT"))
	v.SetDefault("strict", false)
	v.SetDefault("table_length", types.GPTTableLength)
	v.SetDefault("entry_size", types.GPTEntrySize)
	for label, binary := range types.DefaultAndroidBinaries {
		v.SetDefault("binaries."+label, binary)
	}

	// Allow environment variables
	v.SetEnvPrefix("GPTIMAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Defaults and file entries are merged by key; AllKeys sees both
	config.Binaries = make(payload.Binaries)
	for _, key := range v.AllKeys() {
		if label, ok := strings.CutPrefix(key, "binaries."); ok {
			config.Binaries[label] = v.GetString(key)
		}
	}

	return &config, nil
}

// ImageSize returns the configured image length in bytes
func (c *Config) ImageSize() uint64 {
	return c.ImageGiB << 30
}

// TableLayout returns the configured partition entry array shape
func (c *Config) TableLayout() layout.TableLayout {
	return layout.TableLayout{EntrySize: c.EntrySize, TableLength: c.TableLength}
}
