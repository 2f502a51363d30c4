package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/openclaw/erc8004-go/cmd/flags"
	"github.com/openclaw/erc8004-go/httpserver"
	"github.com/openclaw/erc8004-go/metadata"
	"github.com/openclaw/erc8004-go/registry"
)

var serverFlags = append([]cli.Flag{
	flags.NetworkFlag,
	flags.RpcAddrFlag,
	flags.ListenAddrFlag,
	flags.IPFSGatewayFlag,
	flags.IPFSNodeFlag,
	flags.PprofFlag,
	flags.DrainSecondsFlag,
}, flags.LogFlags...)

func main() {
	app := &cli.App{
		Name:  "erc8004-gateway",
		Usage: "Serve the read side of the ERC-8004 registries over HTTP",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			client, err := registry.DialClient(cCtx.Context,
				cCtx.String(flags.NetworkFlag.Name),
				cCtx.String(flags.RpcAddrFlag.Name),
				logger)
			if err != nil {
				logger.Error("Failed to connect to registry network", "err", err)
				return err
			}

			if gateway := cCtx.String(flags.IPFSGatewayFlag.Name); gateway != "" {
				fetcher := metadata.NewFetcher(logger)
				fetcher.SetGateway(gateway)
				client.SetFetcher(fetcher)
			}
			if node := cCtx.String(flags.IPFSNodeFlag.Name); node != "" {
				fetcher := metadata.NewFetcher(logger)
				fetcher.UseIPFSNode(node)
				client.SetFetcher(fetcher)
			}

			info := client.NetworkInfo()
			logger.Info("Connected to registry network",
				"network", info.Network, "chain_id", info.ChainID)

			srv, err := httpserver.New(
				flags.ConfigureServer(cCtx, logger),
				httpserver.NewHandler(client, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}
			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			srv.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
