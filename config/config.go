package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type DatabaseConfig struct {
	// Driver selects the durable store backend: "memory", "postgres" (raw
	// database/sql) or "gorm".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig holds the gameplay tuning knobs. The delays are injected into
// the engine so tests can shrink them.
type GameConfig struct {
	MaxPlayers      int           `mapstructure:"max_players"`
	WinningScore    int           `mapstructure:"winning_score"`
	GuesserPoints   int           `mapstructure:"guesser_points"`
	DrawerPoints    int           `mapstructure:"drawer_points"`
	RoundStartDelay time.Duration `mapstructure:"round_start_delay"`
	NextRoundDelay  time.Duration `mapstructure:"next_round_delay"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.monitor_address", ":9090")
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.user", "postgres")
	viper.SetDefault("database.postgres.dbname", "drawguess")
	viper.SetDefault("game.max_players", 8)
	viper.SetDefault("game.winning_score", 1000)
	viper.SetDefault("game.guesser_points", 100)
	viper.SetDefault("game.drawer_points", 50)
	viper.SetDefault("game.round_start_delay", 2*time.Second)
	viper.SetDefault("game.next_round_delay", 3*time.Second)
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Missing config file is fine, defaults and env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
