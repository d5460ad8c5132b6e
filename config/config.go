// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Auth          ServiceConfiguration
	Storage       StorageConfiguration
	Redis         RedisConfiguration
	Cache         CacheConfiguration
	Elasticsearch ElasticsearchConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// ServiceConfiguration stores the endpoint of a downstream service
type ServiceConfiguration struct {
	URL     string
	Timeout string
}

// StorageConfiguration stores the storage service endpoint and read retry limit
type StorageConfiguration struct {
	URL         string
	Timeout     string
	ReadRetries int
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr string
}

// CacheConfiguration stores the cache namespace and per-resource-type TTLs
type CacheConfiguration struct {
	Namespace  string
	DefaultTTL string
	TTL        map[string]string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.url", "http://localhost:8001")
	viper.SetDefault("auth.timeout", "5s")
	viper.SetDefault("storage.url", "http://localhost:8002")
	viper.SetDefault("storage.timeout", "10s")
	viper.SetDefault("storage.readRetries", 3)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("cache.namespace", "fdb")
	viper.SetDefault("cache.defaultTTL", "10m")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// ResourceTTLs returns the per-resource-type cache TTLs keyed by type,
// plus the fallback TTL for types without an override.
func ResourceTTLs() (map[string]time.Duration, time.Duration) {
	defaultTTL := viper.GetDuration("cache.defaultTTL")
	raw := viper.GetStringMapString("cache.ttl")
	ttls := make(map[string]time.Duration, len(raw))
	for resourceType, value := range raw {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Invalid TTL %q for resource type %q, using default", value, resourceType)
			d = defaultTTL
		}
		ttls[resourceType] = d
	}
	return ttls, defaultTTL
}
