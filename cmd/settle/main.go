// Command settle triggers a settlement run on a running hostledger server.
// It is meant to be invoked by a scheduler on the first day of each month:
//
//	settle -as-of 2026-10-01
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/hostledger/internal/auth"
	"github.com/mmynk/hostledger/internal/config"
	"github.com/mmynk/hostledger/pkg/api"
	"github.com/mmynk/hostledger/pkg/api/apiconnect"
	"github.com/mmynk/hostledger/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	var (
		asOf    = flag.String("as-of", "", "cutoff date (YYYY-MM-DD, UTC); defaults to now")
		server  = flag.String("server", fmt.Sprintf("http://localhost:%d", cfg.Server.Port), "hostledger server URL")
		hostID  = flag.String("host", "", "settle a single host")
		timeout = flag.Duration("timeout", 5*time.Minute, "request timeout")
	)
	flag.Parse()

	cutoff, err := parseCutoff(*asOf)
	if err != nil {
		slog.Error("Invalid -as-of", "value", *asOf, "error", err)
		os.Exit(2)
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Generate("settle-cli", auth.RoleScheduler)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := apiconnect.NewLedgerServiceClient(http.DefaultClient, *server)
	req := connect.NewRequest(&api.RunSettlementRequest{AsOf: cutoff, HostID: *hostID})
	req.Header().Set("Authorization", "Bearer "+token)

	resp, err := client.RunSettlement(ctx, req)
	if err != nil {
		slog.Error("Settlement run failed", "server", *server, "error", err)
		os.Exit(1)
	}

	for _, sr := range resp.Msg.Requests {
		slog.Info("Settlement requested",
			"request_id", sr.ID,
			"host_id", sr.HostID,
			"amount", sr.Amount,
			"currency", sr.Currency,
			"entries", len(sr.EntryIDs),
		)
	}
	for _, id := range resp.Msg.Skipped {
		slog.Info("Nothing owed", "host_id", id)
	}
	for id, msg := range resp.Msg.Failed {
		slog.Error("Host settlement failed", "host_id", id, "error", msg)
	}
	if len(resp.Msg.Failed) > 0 {
		os.Exit(1)
	}
}

// parseCutoff turns a YYYY-MM-DD date into the Unix timestamp of its start
// in UTC. An empty value yields zero, which the server reads as now.
func parseCutoff(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
