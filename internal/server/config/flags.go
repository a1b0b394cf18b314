package config

import (
	"flag"
	"os"
	"time"

	"github.com/talkroom/talkroom/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-b int      bcrypt cost factor
//	-n int      credential cache size
//	-l int      credential cache TTL, minutes
//	-o int      store call timeout, seconds
//	-r int      max retries for idempotent store calls
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-b", "-n", "-l", "-o", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost factor")
	fs.IntVar(&config.CacheSize, "n", config.CacheSize, "credential cache size")
	cacheTTL := fs.Int("l", int(config.CacheTTL.Minutes()), "credential cache TTL (in minutes)")
	storeTimeout := fs.Int("o", int(config.StoreCallTimeout.Seconds()), "store call timeout (in seconds)")
	storeRetryMax := fs.Uint64("r", config.StoreRetryMax, "max retries for idempotent store calls")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.CacheTTL = time.Duration(*cacheTTL) * time.Minute
	config.StoreCallTimeout = time.Duration(*storeTimeout) * time.Second
	config.StoreRetryMax = *storeRetryMax
}
