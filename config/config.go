package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Chain ChainConfig `mapstructure:"chain"`
	Couch CouchConfig `mapstructure:"couch"`
	Game  GameConfig  `mapstructure:"game"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Log   LogConfig   `mapstructure:"log"`
}

type ChainConfig struct {
	RPC            string `mapstructure:"rpc"`
	Contract       string `mapstructure:"contract"`
	BatchBlocks    uint64 `mapstructure:"batch_blocks"`
	HeadIdleMillis int    `mapstructure:"head_idle_millis"`
}

type CouchConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type GameConfig struct {
	Map   string   `mapstructure:"map"`
	Teams []string `mapstructure:"teams"`
}

type HTTPConfig struct {
	Listen string `mapstructure:"listen"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var (
	conf     *Config
	loadOnce sync.Once
)

// defaultTeams is the fixed roster used when the config file does not
// override it. Indexes match the account layout of the deployed contract.
var defaultTeams = []string{
	"0xa89b5934863447f6e4fc53b315a93e873bda69a3",
	"0x14839bf22810f09fb163af69bd21bd5476f445cd",
	"0x540449e4d172cd9491c76320440cd74933d5691a",
	"0x286bda1413a2df81731d4930ce2f862a35a609fe",
	"0x818fc6c2ec5986bc6e2cbf00939d90556ab12ce5",
	"0x99ea4db9ee77acd40b119bd1dc4e33e1c070b80d",
	"0xb24754be79281553dc1adc160ddf5cd9b74361a4",
	"0x99ea4db9ee77acd40b119bd1dc4e33e1c070b80d",
	"0x999967e2ec8a74b7c8e9db19e039d920b31d39d0",
	"0x0b1724cc9fda0186911ef6a75949e9c0d3f0f2f3",
	"0x0abdace70d3790235af448c88547603b945604ea",
	"0x17fd666fa0784885fa1afec8ac624d9b7e72b752",
}

// Load reads the yaml config at path, with TOKENROCKS_* environment
// variables taking precedence. A .env file next to the binary is honoured
// first so local runs don't need exports.
func Load(path string) error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TOKENROCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every scalar key needs a default so AutomaticEnv can see its
	// TOKENROCKS_* override even when the yaml omits the key.
	v.SetDefault("chain.rpc", "http://localhost:8545")
	v.SetDefault("chain.contract", "")
	v.SetDefault("chain.batch_blocks", 2000)
	v.SetDefault("chain.head_idle_millis", 1000)
	v.SetDefault("couch.url", "http://localhost:5984")
	v.SetDefault("couch.database", "thistoken")
	v.SetDefault("game.map", "simple8")
	v.SetDefault("http.listen", ":8080")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Game.Teams) == 0 {
		c.Game.Teams = defaultTeams
	}
	conf = c
	return nil
}

// GetConfig returns the loaded config; defaults are served if Load was
// never called (tests, the txt2json CLI).
func GetConfig() *Config {
	loadOnce.Do(func() {
		if conf == nil {
			conf = &Config{
				Chain: ChainConfig{RPC: "http://localhost:8545", BatchBlocks: 2000, HeadIdleMillis: 1000},
				Couch: CouchConfig{URL: "http://localhost:5984", Database: "thistoken"},
				Game:  GameConfig{Map: "simple8", Teams: defaultTeams},
				HTTP:  HTTPConfig{Listen: ":8080"},
				Log:   LogConfig{Level: "info"},
			}
		}
	})
	return conf
}

// Teams returns the fixed, index-addressable team roster.
func Teams() []string {
	return GetConfig().Game.Teams
}
