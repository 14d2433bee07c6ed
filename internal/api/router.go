package api

import (
	"net/http"

	_ "github.com/AlexZinkM/eth-wallet/docs"
	"github.com/AlexZinkM/eth-wallet/internal/handler"
	"github.com/AlexZinkM/eth-wallet/wallet"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(w *wallet.Wallet) http.Handler {
	walletHandler := handler.NewWalletHandler(w)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Account endpoints
	mux.HandleFunc("/account/register", walletHandler.Register)
	mux.HandleFunc("/account/login", walletHandler.Login)
	mux.HandleFunc("/account/logout", walletHandler.Logout)
	mux.HandleFunc("/account/export", walletHandler.Export)
	mux.HandleFunc("/account/import", walletHandler.Import)
	mux.HandleFunc("/account/balance", walletHandler.Balance)

	// Transaction endpoints
	mux.HandleFunc("/tx/invoke", walletHandler.Invoke)
	mux.HandleFunc("/tx/pending", walletHandler.Pending)

	return mux
}
