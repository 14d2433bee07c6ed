// @title        eth-wallet API
// @version      1.0
// @description  Encrypted keystore accounts and nonce-safe transaction submission
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/account"
	"github.com/AlexZinkM/eth-wallet/internal/api"
	"github.com/AlexZinkM/eth-wallet/internal/client"
	"github.com/AlexZinkM/eth-wallet/internal/config"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/store"
	"github.com/AlexZinkM/eth-wallet/wallet"

	"github.com/ethereum/go-ethereum/log"
)

const (
	dbCache   = 16 // MB
	dbHandles = 16
)

func main() {
	if err := run(); err != nil {
		log.Crit("Wallet stopped", "err", err)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	lvl, err := log.LvlFromString(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(config.GetDBPath(), dbCache, dbHandles)
	if err != nil {
		return err
	}
	defer st.Close()

	ledger, err := client.DialEthereum(ctx, config.GetRPCURL())
	if err != nil {
		return err
	}
	defer ledger.Close()

	w := wallet.New(wallet.Config{
		ChainID:         config.GetChainID(),
		Crypto:          crypto.Options{KDF: cfg.KDF, Rounds: cfg.KDFRounds},
		DefaultGas:      cfg.DefaultGas,
		MaxNonceRetries: cfg.MaxNonceRetries,
		NonceErrorCode:  cfg.NonceErrorCode,
		Freebie:         config.GetFreebieWei(),
	}, st, ledger, client.NewCoinGeckoClient())

	resumeSession(w.Accounts())

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(w),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr, "rpc", config.GetRPCURL(), "chainID", cfg.ChainID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// resumeSession offers to unlock a session persisted by an earlier run
func resumeSession(accounts *account.Manager) {
	persisted, err := accounts.Persisted()
	if err != nil {
		if !errors.Is(err, account.ErrNoPersisted) {
			log.Warn("Failed to read persisted session", "err", err)
		}
		return
	}

	password, err := config.ReadPassword(fmt.Sprintf("Password for %s: ", persisted.Handle))
	if err != nil {
		log.Info("Persisted session left locked", "handle", persisted.Handle, "reason", err)
		return
	}
	defer clear(password)

	if _, err := accounts.Resume(password); err != nil {
		log.Warn("Failed to resume session", "handle", persisted.Handle, "err", err)
	}
}
