// Command verushash-service runs an HTTP API exposing VerusHash v2.x block
// header hash computation, canonicalization, and PBaaS sub-header lookup.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/verus-hash/verushash-service/internal/api"
	"github.com/verus-hash/verushash-service/internal/apm"
	"github.com/verus-hash/verushash-service/internal/config"
	"github.com/verus-hash/verushash-service/internal/notify"
	"github.com/verus-hash/verushash-service/internal/profiling"
	"github.com/verus-hash/verushash-service/internal/rpc"
	"github.com/verus-hash/verushash-service/internal/storage"
	"github.com/verus-hash/verushash-service/internal/util"
	"github.com/verus-hash/verushash-service/internal/verushash"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("verushash-service v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := util.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	util.Infof("verushash-service v%s starting", version)

	activation := buildActivationTable(cfg)

	ownChainIDBytes, err := hex.DecodeString(cfg.Activation.ChainID)
	var ownChainID verushash.ChainID
	if err != nil || len(ownChainIDBytes) != verushash.ChainIDSize {
		util.Warnf("activation.chain_id is not a %d-byte hex string, using its raw bytes as the chain id", verushash.ChainIDSize)
		copy(ownChainID[:], cfg.Activation.ChainID)
	} else {
		copy(ownChainID[:], ownChainIDBytes)
	}

	cache, err := storage.NewCache(cfg.Cache.URL, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
	if err != nil {
		util.Fatalf("Failed to connect to cache: %v", err)
	}
	defer cache.Close()

	var pprofServer *profiling.Server
	if cfg.Profiling.Enabled {
		pprofServer = profiling.NewServer(&cfg.Profiling)
		if err := pprofServer.Start(); err != nil {
			util.Errorf("Failed to start pprof server: %v", err)
		}
	}

	var apmAgent *apm.Agent
	if cfg.APM.Enabled {
		apmAgent = apm.NewAgent(&cfg.APM)
		if err := apmAgent.Start(); err != nil {
			util.Errorf("Failed to start APM agent: %v", err)
		}
	}

	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		notifier = notify.NewNotifier(&notify.WebhookConfig{
			Enabled:      true,
			DiscordURL:   cfg.Notify.DiscordWebhook,
			TelegramBot:  cfg.Notify.TelegramToken,
			TelegramChat: cfg.Notify.TelegramChatID,
			ServiceName:  "verushash-service",
		})
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg, cache, activation, ownChainID)
		if err := apiServer.Start(); err != nil {
			util.Fatalf("Failed to start API server: %v", err)
		}
	}

	nodeClient := rpc.NewClient(cfg.Node.URL, cfg.Node.Timeout)
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()
	go pollNodeHealth(pollCtx, nodeClient, activation, apmAgent, notifier)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	util.Info("verushash-service started successfully. Press Ctrl+C to stop.")

	<-sigChan
	util.Info("Shutting down...")

	cancelPoll()
	if apiServer != nil {
		apiServer.Stop()
	}
	if pprofServer != nil {
		pprofServer.Stop()
	}
	if apmAgent != nil {
		apmAgent.Stop()
	}

	util.Info("verushash-service stopped")
}

// pollNodeHealth periodically fetches the tip header from the upstream
// node to report its health and height, and to fire activation-reached
// notifications as configured heights are crossed.
func pollNodeHealth(ctx context.Context, client *rpc.Client, activation *verushash.ActivationTable, agent *apm.Agent, notifier *notify.Notifier) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var lastVersion verushash.Version = -1

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			header, err := client.GetBlockHeader(ctx, "latest")
			if err != nil {
				util.NodeHealthChanged(false, err)
				if agent != nil {
					agent.UpdateNodeMetrics(false, 0)
				}
				continue
			}
			util.NodeHealthChanged(true, nil)

			if agent != nil {
				agent.UpdateNodeMetrics(client.IsHealthy(), header.Height)
			}

			active := activation.ActiveVersion(header.Height)
			if active != lastVersion {
				lastVersion = active
				util.ActivationReached(strconv.Itoa(int(active)), header.Height)
				if agent != nil {
					agent.RecordActivationReached(strconv.Itoa(int(active)), header.Height)
				}
				if notifier != nil {
					notifier.NotifyActivationReached(strconv.Itoa(int(active)), header.Height)
				}
			}
		}
	}
}

// buildActivationTable wires the configured per-version activation heights
// (spec.md §3) into a ready-to-query ActivationTable.
func buildActivationTable(cfg *config.Config) *verushash.ActivationTable {
	t := verushash.NewActivationTable()
	if err := t.SetActivationHeight(verushash.SolutionV2, cfg.Activation.V2Height); err != nil {
		util.Warnf("failed to set v2 activation height: %v", err)
	}
	if err := t.SetActivationHeight(verushash.SolutionV21, cfg.Activation.V21Height); err != nil {
		util.Warnf("failed to set v2.1 activation height: %v", err)
	}
	if err := t.SetActivationHeight(verushash.SolutionV22, cfg.Activation.V22Height); err != nil {
		util.Warnf("failed to set v2.2 activation height: %v", err)
	}
	return t
}
