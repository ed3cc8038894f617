// Command ptokens-bridge is the process entry point for one bridge
// core. Docopt-style argument decoding and JSON-RPC HTTP framing are
// explicitly out of scope for the core (spec.md §1); this wrapper is a
// thin flag-based front end in the teacher's dashboard-mode style: the
// JSON result goes to stdout; a failed command's error goes to stdout
// and to the NDJSON log under the data directory; setup errors go to
// stderr; exit 0 on success and 1 on error.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pnetwork-association/ptokens-bridge/config"
	"github.com/pnetwork-association/ptokens-bridge/db/filedb"
	"github.com/pnetwork-association/ptokens-bridge/dictionary"
	"github.com/pnetwork-association/ptokens-bridge/internal/bridgelog"
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/utxomanager"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ptokens-bridge", flag.ContinueOnError)
	configPath := fs.String("config", "config.json", "path to the bridge config file")
	bridgeName := fs.String("bridge", "", "name of the bridge config entry to operate on")
	command := fs.String("command", "", "getEnclaveState|getAllUtxos|getLatestBlockNumbers")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *command == "" {
		fmt.Fprintln(os.Stderr, "missing -command")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	bridge := cfg.BridgeByName(*bridgeName)
	if bridge == nil {
		fmt.Fprintf(os.Stderr, "no bridge config named %q\n", *bridgeName)
		return 1
	}

	logger, err := bridgelog.New(cfg.DataDir+"/bridge.ndjson", "cmd")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	store, err := filedb.Open(cfg.DataDir)
	if err != nil {
		logger.Error("cannot open db", map[string]any{"error": err.Error()})
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	out, err := dispatch(*command, bridge, store, logger)
	if err != nil {
		logger.Error("command failed", map[string]any{"command": *command, "error": err.Error()})
		fmt.Fprintln(os.Stdout, err.Error())
		return 1
	}
	data, err := json.Marshal(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stdout, string(data))
	return 0
}

func dispatch(command string, bridge *config.BridgeConfig, store *filedb.Store, logger *bridgelog.Logger) (any, error) {
	switch command {
	case "getEnclaveState":
		nonceKeys := noncekeys.New(store, bridge.Destination.ChainID)
		nonce, err := nonceKeys.Snapshot()
		if err != nil {
			return nil, err
		}
		return map[string]any{"accountNonce": nonce, "chainId": bridge.Destination.ChainID}, nil

	case "getAllUtxos":
		mgr, err := utxomanager.Load(store)
		if err != nil {
			return nil, err
		}
		return mgr.Enumerate(), nil

	case "getLatestBlockNumbers":
		dict, err := dictionary.Load(store)
		if err != nil {
			return nil, err
		}
		return map[string]any{"entries": dict.Entries()}, nil

	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}
