package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-grpc-address health-check grpc server address in format [host]:[port]
//	-d database DSN (server remote store)
//	-client-d local SQLite database DSN (client local store)
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-min-server-version minimum protocol version this build syncs with
//	-sync-page-size number of records per sync batch
//	-sync-interval background sync job interval (e.g., "30s", "5m")
//	-server-address remote server base URL for the client adapter
//	-login account login for the client startup flow
//	-master-password master password for the client startup flow
//	-register register a new account instead of logging in
//	-hash-key shared HMAC key for transport integrity hashes
func ParseFlags() *StructuredConfig {
	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN string
	var clientDatabaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var minServerVersion string
	var syncPageSize int
	var syncInterval time.Duration
	var serverURL string
	var authLogin string
	var authMasterPassword string
	var authRegister bool
	var hashKey string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.Var(&grpcServerAddress, "grpc-address", "Net grpc health-check server address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&clientDatabaseDSN, "client-d", "", "Client local database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&minServerVersion, "min-server-version", "", "Minimum protocol version to sync with")
	flag.IntVar(&syncPageSize, "sync-page-size", 0, "Number of records per sync batch")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync job interval")
	flag.StringVar(&serverURL, "server-address", "", "Remote server base URL for the client adapter")
	flag.StringVar(&authLogin, "login", "", "Account login for the client startup flow")
	flag.StringVar(&authMasterPassword, "master-password", "", "Master password for the client startup flow")
	flag.BoolVar(&authRegister, "register", false, "Register a new account instead of logging in")
	flag.StringVar(&hashKey, "hash-key", "", "Shared HMAC key for transport integrity hashes")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:     tokenSignKey,
			TokenIssuer:      tokenIssuer,
			TokenDuration:    tokenDuration,
			MinServerVersion: minServerVersion,
			HashKey:          hashKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			ClientDB: ClientDB{
				DSN: clientDatabaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress: serverURL,
		},
		Sync: Sync{
			PageSize: syncPageSize,
			Interval: syncInterval,
		},
		Auth: Auth{
			Login:          authLogin,
			MasterPassword: authMasterPassword,
			Register:       authRegister,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It rejects ports below 1 (no upper bound is checked), checks IP correctness
// unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
