package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Profile    ProfileConfig    `mapstructure:"profile"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		InteractionSnapshots string `mapstructure:"interaction_snapshots"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProfileConfig drives the centroid pipeline. InteractionWeights is the
// base-weight table applied per interaction type; a negative base weight
// flips the vector direction instead of producing negative mass.
type ProfileConfig struct {
	InteractionWeights map[string]float64 `mapstructure:"interaction_weights"`
	DefaultWeight      float64            `mapstructure:"default_weight"`
	MinPointsToCluster int                `mapstructure:"min_points_to_cluster"`
	MinNoisePoints     int                `mapstructure:"min_noise_points"`
	MaxCentroids       int                `mapstructure:"max_centroids"`
	Clustering         ClusteringConfig   `mapstructure:"clustering"`
}

type ClusteringConfig struct {
	Algorithm       string  `mapstructure:"algorithm"`
	MinClusterSize  int     `mapstructure:"min_cluster_size"`
	MinSamples      int     `mapstructure:"min_samples"`
	Metric          string  `mapstructure:"metric"`
	SelectionMethod string  `mapstructure:"selection_method"`
	Epsilon         float64 `mapstructure:"epsilon"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults(viper.GetViper())

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a Config built purely from defaults, for the batch CLI
// and for tests.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(err)
	}
	return &config
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "5s")
	v.SetDefault("redis.profile_ttl", "1h")

	// Kafka defaults
	v.SetDefault("kafka.topics.interaction_snapshots", "interaction-snapshots")

	// Auth defaults
	v.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Profile pipeline defaults
	v.SetDefault("profile.interaction_weights", map[string]float64{
		"like":        1.0,
		"repost":      1.5,
		"requestMore": 3.0,
		"requestLess": -2.0,
	})
	v.SetDefault("profile.default_weight", 1.0)
	v.SetDefault("profile.min_points_to_cluster", 10)
	v.SetDefault("profile.min_noise_points", 3)
	v.SetDefault("profile.max_centroids", 5)
	v.SetDefault("profile.clustering.algorithm", "hdbscan")
	v.SetDefault("profile.clustering.min_cluster_size", 5)
	v.SetDefault("profile.clustering.min_samples", 2)
	v.SetDefault("profile.clustering.metric", "euclidean")
	v.SetDefault("profile.clustering.selection_method", "eom")
	v.SetDefault("profile.clustering.epsilon", 0.8)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
