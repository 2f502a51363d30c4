package main

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/openclaw/erc8004-go/cmd/flags"
	"github.com/openclaw/erc8004-go/codec"
	"github.com/openclaw/erc8004-go/metadata"
	"github.com/openclaw/erc8004-go/networks"
	"github.com/openclaw/erc8004-go/registry"
)

var globalFlags = append([]cli.Flag{
	flags.NetworkFlag,
	flags.RpcAddrFlag,
	flags.JSONOutputFlag,
	flags.IPFSGatewayFlag,
	flags.IPFSNodeFlag,
}, flags.LogFlags...)

func main() {
	app := &cli.App{
		Name:  "erc8004",
		Usage: "ERC-8004 agent registry client",
		Flags: globalFlags,
		Commands: []*cli.Command{
			{
				Name:      "agent",
				Usage:     "Look up an agent record by id",
				ArgsUsage: "<agent-id>",
				Action: run(func(cCtx *cli.Context) (any, error) {
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					return client.GetAgent(cCtx.Context, agentID)
				}),
			},
			{
				Name:      "exists",
				Usage:     "Check whether an agent record exists",
				ArgsUsage: "<agent-id>",
				Action: run(func(cCtx *cli.Context) (any, error) {
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"agent_id": agentID.String(),
						"exists":   client.Exists(cCtx.Context, agentID),
					}, nil
				}),
			},
			{
				Name:      "owner",
				Usage:     "Count the agent records an address owns",
				ArgsUsage: "<address>",
				Action: run(func(cCtx *cli.Context) (any, error) {
					owner, err := addressArg(cCtx, 0)
					if err != nil {
						return nil, err
					}
					client, err := dialClient(cCtx)
					if err != nil {
						return nil, err
					}
					count, err := client.AgentCount(cCtx.Context, owner)
					if err != nil {
						return nil, err
					}
					return map[string]any{
						"owner":       owner.Hex(),
						"agent_count": count.String(),
					}, nil
				}),
			},
			{
				Name:      "reputation",
				Usage:     "Query an agent's reputation summary",
				ArgsUsage: "<agent-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "client", Usage: "reviewer address to include (repeatable)"},
					&cli.StringFlag{Name: "tag1", Usage: "primary tag filter"},
					&cli.StringFlag{Name: "tag2", Usage: "secondary tag filter"},
				},
				Action: run(func(cCtx *cli.Context) (any, error) {
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					filters := registry.ReputationFilters{
						Tag1: cCtx.String("tag1"),
						Tag2: cCtx.String("tag2"),
					}
					for _, addrHex := range cCtx.StringSlice("client") {
						if !common.IsHexAddress(addrHex) {
							return nil, fmt.Errorf("invalid client address: %s", addrHex)
						}
						filters.ClientAddresses = append(filters.ClientAddresses, common.HexToAddress(addrHex))
					}
					return client.GetReputation(cCtx.Context, agentID, filters), nil
				}),
			},
			{
				Name:  "register",
				Usage: "Register a new agent record",
				Flags: []cli.Flag{
					flags.PrivateKeyFlag,
					&cli.StringFlag{Name: "uri", Usage: "token URI to register with; mutually exclusive with --name"},
					&cli.StringFlag{Name: "name", Usage: "agent name; builds canonical registration metadata"},
					&cli.StringFlag{Name: "description", Usage: "agent description"},
					&cli.StringFlag{Name: "image", Usage: "agent image URI"},
				},
				Action: run(func(cCtx *cli.Context) (any, error) {
					key, err := signingKey(cCtx)
					if err != nil {
						return nil, err
					}
					client, err := dialClient(cCtx)
					if err != nil {
						return nil, err
					}
					if name := cCtx.String("name"); name != "" {
						if cCtx.String("uri") != "" {
							return nil, fmt.Errorf("--uri and --name are mutually exclusive")
						}
						return client.RegisterAgent(cCtx.Context, key, codec.RegistrationOptions{
							Name:        name,
							Description: cCtx.String("description"),
							Image:       cCtx.String("image"),
						})
					}
					return client.Register(cCtx.Context, key, cCtx.String("uri"))
				}),
			},
			{
				Name:      "update-uri",
				Usage:     "Point an agent record at a new token URI",
				ArgsUsage: "<agent-id> <uri>",
				Flags:     []cli.Flag{flags.PrivateKeyFlag},
				Action: run(func(cCtx *cli.Context) (any, error) {
					key, err := signingKey(cCtx)
					if err != nil {
						return nil, err
					}
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					newURI := cCtx.Args().Get(1)
					if newURI == "" {
						return nil, fmt.Errorf("missing new URI argument")
					}
					return client.SetAgentURI(cCtx.Context, key, agentID, newURI)
				}),
			},
			{
				Name:      "feedback",
				Usage:     "Submit feedback for an agent",
				ArgsUsage: "<agent-id>",
				Flags: []cli.Flag{
					flags.PrivateKeyFlag,
					&cli.Float64Flag{Name: "value", Required: true, Usage: "score value, e.g. 4.5"},
					&cli.UintFlag{Name: "decimals", Value: uint(registry.DefaultFeedbackDecimals), Usage: "decimal places for the score"},
					&cli.StringFlag{Name: "tag1", Usage: "primary tag"},
					&cli.StringFlag{Name: "tag2", Usage: "secondary tag"},
					&cli.StringFlag{Name: "endpoint", Usage: "endpoint the feedback applies to"},
					&cli.StringFlag{Name: "feedback-uri", Usage: "URI of an off-chain feedback document"},
					&cli.StringFlag{Name: "feedback-hash", Usage: "32-byte hex hash of the off-chain feedback document"},
				},
				Action: run(func(cCtx *cli.Context) (any, error) {
					key, err := signingKey(cCtx)
					if err != nil {
						return nil, err
					}
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					var feedbackHash [32]byte
					if raw := cCtx.String("feedback-hash"); raw != "" {
						decoded, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
						if err != nil || len(decoded) != 32 {
							return nil, fmt.Errorf("invalid feedback hash: %q", raw)
						}
						copy(feedbackHash[:], decoded)
					}
					decimals, err := feedbackDecimals(cCtx.Uint("decimals"))
					if err != nil {
						return nil, err
					}
					return client.GiveFeedback(cCtx.Context, key, agentID, registry.Feedback{
						Value:        cCtx.Float64("value"),
						Decimals:     decimals,
						Tag1:         cCtx.String("tag1"),
						Tag2:         cCtx.String("tag2"),
						Endpoint:     cCtx.String("endpoint"),
						FeedbackURI:  cCtx.String("feedback-uri"),
						FeedbackHash: feedbackHash,
					})
				}),
			},
			{
				Name:      "revoke-feedback",
				Usage:     "Revoke a previously submitted feedback entry",
				ArgsUsage: "<agent-id> <index>",
				Flags:     []cli.Flag{flags.PrivateKeyFlag},
				Action: run(func(cCtx *cli.Context) (any, error) {
					key, err := signingKey(cCtx)
					if err != nil {
						return nil, err
					}
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					var index uint64
					if _, err := fmt.Sscanf(cCtx.Args().Get(1), "%d", &index); err != nil {
						return nil, fmt.Errorf("invalid feedback index: %s", cCtx.Args().Get(1))
					}
					txHash, err := client.RevokeFeedback(cCtx.Context, key, agentID, index)
					if err != nil {
						return nil, err
					}
					return map[string]any{"agent_id": agentID.String(), "index": index, "tx_hash": txHash}, nil
				}),
			},
			{
				Name:      "clients",
				Usage:     "List reviewer addresses that left feedback for an agent",
				ArgsUsage: "<agent-id>",
				Action: run(func(cCtx *cli.Context) (any, error) {
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					reviewers, err := client.GetClients(cCtx.Context, agentID)
					if err != nil {
						return nil, err
					}
					return map[string]any{"agent_id": agentID.String(), "clients": reviewers}, nil
				}),
			},
			{
				Name:      "read-feedback",
				Usage:     "Read one stored feedback entry",
				ArgsUsage: "<agent-id> <client-address> <index>",
				Action: run(func(cCtx *cli.Context) (any, error) {
					client, agentID, err := clientAndAgentID(cCtx)
					if err != nil {
						return nil, err
					}
					reviewer, err := addressArg(cCtx, 1)
					if err != nil {
						return nil, err
					}
					var index uint64
					if _, err := fmt.Sscanf(cCtx.Args().Get(2), "%d", &index); err != nil {
						return nil, fmt.Errorf("invalid feedback index: %s", cCtx.Args().Get(2))
					}
					return client.ReadFeedback(cCtx.Context, agentID, reviewer, index)
				}),
			},
			{
				Name:  "networks",
				Usage: "List supported networks",
				Action: run(func(cCtx *cli.Context) (any, error) {
					return networks.All(), nil
				}),
			},
			{
				Name:      "contracts",
				Usage:     "Show the registry contract addresses for a network",
				ArgsUsage: "[network]",
				Action: run(func(cCtx *cli.Context) (any, error) {
					return contractsNetwork(cCtx.Args().Get(0), cCtx.String(flags.NetworkFlag.Name))
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// run wraps a command action with uniform output and error handling: the
// result prints as indented JSON, and in --json mode errors come out as
// {"error": ...} on stdout with exit code 1.
func run(fn func(cCtx *cli.Context) (any, error)) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		result, err := fn(cCtx)
		if err != nil {
			if cCtx.Bool(flags.JSONOutputFlag.Name) {
				encoded, _ := json.Marshal(map[string]string{"error": err.Error()})
				fmt.Println(string(encoded))
				return cli.Exit("", 1)
			}
			return cli.Exit(err.Error(), 1)
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		fmt.Println(string(encoded))
		return nil
	}
}

func dialClient(cCtx *cli.Context) (*registry.Client, error) {
	logger := flags.SetupLogger(cCtx)
	client, err := registry.DialClient(cCtx.Context,
		cCtx.String(flags.NetworkFlag.Name),
		cCtx.String(flags.RpcAddrFlag.Name),
		logger)
	if err != nil {
		return nil, err
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
	return client, nil
}

func clientAndAgentID(cCtx *cli.Context) (*registry.Client, *big.Int, error) {
	raw := cCtx.Args().Get(0)
	agentID, ok := new(big.Int).SetString(raw, 10)
	if !ok || agentID.Sign() < 0 {
		return nil, nil, fmt.Errorf("invalid agent id: %q", raw)
	}
	client, err := dialClient(cCtx)
	if err != nil {
		return nil, nil, err
	}
	return client, agentID, nil
}

func addressArg(cCtx *cli.Context, position int) (common.Address, error) {
	raw := cCtx.Args().Get(position)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address: %q", raw)
	}
	return common.HexToAddress(raw), nil
}

// contractsNetwork resolves the network for the contracts command: the
// positional argument wins, the --network flag is the fallback.
func contractsNetwork(arg, flagValue string) (networks.Network, error) {
	name := arg
	if name == "" {
		name = flagValue
	}
	return networks.Resolve(name)
}

// feedbackDecimals narrows the --decimals flag to the registry's uint8
// range instead of truncating silently.
func feedbackDecimals(v uint) (*uint8, error) {
	if v > math.MaxUint8 {
		return nil, fmt.Errorf("invalid decimals: %d (maximum %d)", v, math.MaxUint8)
	}
	decimals := uint8(v)
	return &decimals, nil
}

func signingKey(cCtx *cli.Context) (*ecdsa.PrivateKey, error) {
	hexKey := cCtx.String(flags.PrivateKeyFlag.Name)
	if hexKey == "" {
		return nil, fmt.Errorf("a private key is required: set --private-key or PRIVATE_KEY")
	}
	return registry.ParseKey(hexKey)
}
