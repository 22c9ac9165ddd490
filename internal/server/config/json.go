package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/netwerker/internal/flagx"
	"github.com/dmitrijs2005/netwerker/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration ("1h" or integer nanoseconds). Pointer fields distinguish
// an explicit zero from an absent key.
type JsonConfig struct {
	EndpointAddrGRPC             string          `json:"endpoint_addr_grpc"`
	MetricsAddr                  string          `json:"metrics_addr"`
	StoreDriver                  string          `json:"store_driver"`
	DatabaseDSN                  string          `json:"database_dsn"`
	MongoURI                     string          `json:"mongo_uri"`
	MongoDatabase                string          `json:"mongo_database"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MaxVisited                   *int            `json:"max_visited"`
	MaxDepth                     *int            `json:"max_depth"`
	ConfirmEdges                 *bool           `json:"confirm_edges"`
	LoginRequiredRoles           []string        `json:"login_required_roles"`
	BlacklistFile                string          `json:"blacklist_file"`
	BlacklistS3Bucket            string          `json:"blacklist_s3_bucket"`
	BlacklistS3Key               string          `json:"blacklist_s3_key"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	LogLevel                     string          `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays config with the JSON file named by -c or -config.
// Keys absent from the file leave the current values untouched. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.StoreDriver, c.StoreDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.BlacklistFile, c.BlacklistFile)
	setString(&config.BlacklistS3Bucket, c.BlacklistS3Bucket)
	setString(&config.BlacklistS3Key, c.BlacklistS3Key)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.MaxVisited != nil {
		config.MaxVisited = *c.MaxVisited
	}
	if c.MaxDepth != nil {
		config.MaxDepth = *c.MaxDepth
	}
	if c.ConfirmEdges != nil {
		config.ConfirmEdges = *c.ConfirmEdges
	}
	if c.LoginRequiredRoles != nil {
		config.LoginRequiredRoles = c.LoginRequiredRoles
	}
}
