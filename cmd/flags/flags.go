// Package flags holds the CLI flag definitions shared by the erc8004
// binaries, plus the logger and server wiring derived from them.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/openclaw/erc8004-go/common"
	"github.com/openclaw/erc8004-go/httpserver"
)

func SetupLogger(cCtx *cli.Context) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var NetworkFlag = &cli.StringFlag{
	Name:    "network",
	Aliases: []string{"n"},
	Value:   "sepolia",
	Usage:   "registry network to use (see 'networks' command)",
	EnvVars: []string{"ERC8004_NETWORK"},
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	Aliases: []string{"rpc"},
	Usage:   "RPC endpoint override; defaults to the network's public endpoint",
	EnvVars: []string{"ERC8004_RPC"},
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "hex-encoded secp256k1 private key for write operations",
	EnvVars: []string{"PRIVATE_KEY"},
}

var JSONOutputFlag = &cli.BoolFlag{
	Name:    "json",
	Aliases: []string{"j"},
	Value:   false,
	Usage:   "print results as JSON",
}

var IPFSGatewayFlag = &cli.StringFlag{
	Name:  "ipfs-gateway",
	Usage: "HTTP gateway for resolving ipfs:// metadata URIs",
}

var IPFSNodeFlag = &cli.StringFlag{
	Name:  "ipfs-node",
	Usage: "IPFS node API address (host:port) for resolving ipfs:// metadata URIs",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}
