package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/flagx"
)

var flagNames = []string{
	"-a", "-m", "-x", "-d", "-o", "-n", "-s", "-t", "-r", "-v", "-k", "-f",
	"-R", "-l", "-b", "-y", "-u", "-p", "-g", "-e", "-L",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address
//	-x string   store driver: postgres, mongo or memory
//	-d string   PostgreSQL DSN
//	-o string   MongoDB URI
//	-n string   MongoDB database
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-v int      max nodes visited per distance search
//	-k int      max search depth
//	-f bool     confirm direct friendships by fingerprint
//	-R string   comma-separated roles required for password login
//	-l string   blacklist file
//	-b string   blacklist S3 bucket
//	-y string   blacklist S3 object key
//	-u string   S3 root user
//	-p string   S3 root password
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-L string   log level
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.StoreDriver, "x", config.StoreDriver, "store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "o", config.MongoURI, "mongo URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "mongo database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.IntVar(&config.MaxVisited, "v", config.MaxVisited, "max visited nodes per search, 0 for unlimited")
	fs.IntVar(&config.MaxDepth, "k", config.MaxDepth, "max search depth, 0 for unlimited")
	fs.BoolVar(&config.ConfirmEdges, "f", config.ConfirmEdges, "confirm direct friendships by fingerprint")
	fs.Func("R", "comma-separated roles required for password login", func(v string) error {
		config.LoginRequiredRoles = splitList(v)
		return nil
	})

	fs.StringVar(&config.BlacklistFile, "l", config.BlacklistFile, "email domain blacklist file")
	fs.StringVar(&config.BlacklistS3Bucket, "b", config.BlacklistS3Bucket, "email domain blacklist S3 bucket")
	fs.StringVar(&config.BlacklistS3Key, "y", config.BlacklistS3Key, "email domain blacklist S3 key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
