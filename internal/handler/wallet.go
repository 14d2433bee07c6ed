package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/account"
	"github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/wallet"

	"github.com/ethereum/go-ethereum/log"
	"github.com/skip2/go-qrcode"
)

// WalletHandler serves the account and transaction endpoints
type WalletHandler struct {
	wallet *wallet.Wallet
	log    log.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(w *wallet.Wallet) *WalletHandler {
	return &WalletHandler{
		wallet: w,
		log:    log.New("module", "handler"),
	}
}

// Register handles POST /account/register
// @Summary      Register account
// @Description  Generates a new key, stores it encrypted under the handle and logs it in
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request  body      model.RegisterRequest  true  "Handle and password"
// @Success      200      {object}  model.AccountResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /account/register [post]
func (h *WalletHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// Convert password to []byte, use it, then zero it immediately
	password := []byte(req.Password)
	defer clear(password)

	acc, err := h.wallet.Accounts().Register(r.Context(), req.Handle, password, account.RegisterOptions{
		DoNotFund: req.DoNotFund,
		Persist:   req.Persist,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, acc)
}

// Login handles POST /account/login
// @Summary      Log in
// @Description  Decrypts the keystore stored under the handle and makes it the active account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoginRequest  true  "Handle and password"
// @Success      200      {object}  model.AccountResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /account/login [post]
func (h *WalletHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	acc, err := h.wallet.Accounts().Login(req.Handle, password, req.Persist)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, acc)
}

// Logout handles POST /account/logout
// @Summary      Log out
// @Description  Clears the active account and the persisted session
// @Tags         account
// @Produce      json
// @Success      200  {object}  model.LogoutResponse
// @Router       /account/logout [post]
func (h *WalletHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	h.wallet.Accounts().Logout()
	writeJSON(w, http.StatusOK, model.LogoutResponse{Success: true})
}

// Export handles GET /account/export
// @Summary      Export keystore
// @Description  Returns the active account's keystore as a version 3 document
// @Tags         account
// @Produce      json
// @Success      200  {object}  model.ExportedKey
// @Failure      401  {object}  model.ErrorResponse
// @Router       /account/export [get]
func (h *WalletHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	exported, err := h.wallet.Accounts().ExportKey()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exported)
}

// Import handles POST /account/import
// @Summary      Import keystore
// @Description  Decrypts a version 3 keystore document. With a handle it is stored and logged in.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Keystore and password"
// @Success      200      {object}  model.AccountResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /account/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if len(req.Keystore) == 0 {
		writeBadRequest(w, "keystore is required")
		return
	}

	password := []byte(req.Password)
	defer clear(password)

	acc, err := h.wallet.Accounts().ImportKey(req.Handle, password, req.Keystore)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeAccount(w, acc)
}

// Invoke handles POST /tx/invoke
// @Summary      Invoke a contract
// @Description  Runs a read-only call, or signs and sends a transaction when send is true
// @Tags         tx
// @Accept       json
// @Produce      json
// @Param        request  body      model.InvokeRequest  true  "Transaction intent"
// @Success      200      {object}  model.InvokeResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /tx/invoke [post]
func (h *WalletHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	intent, err := toIntent(&req)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res, err := h.wallet.Invoke(r.Context(), *intent)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := model.InvokeResponse{}
	if req.Send {
		resp.TxHash = res.Hash.Hex()
	} else {
		resp.Result = common.EncodeHex(res.Output)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Pending handles GET /tx/pending
// @Summary      List pending transactions
// @Description  Lists transactions sent in this session, with filtering
// @Tags         tx
// @Produce      json
// @Param        hash      query     string  false  "Transaction hash"
// @Param        minNonce  query     int     false  "Minimum nonce"
// @Param        maxNonce  query     int     false  "Maximum nonce"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to        query     string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  model.PendingResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /tx/pending [get]
func (h *WalletHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	var req model.PendingRequest
	q := r.URL.Query()

	// Parse date parameters (YYYY-MM-DD)
	const dateLayout = "2006-01-02"
	if fromStr := q.Get("from"); fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			writeBadRequest(w, "invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		req.From = &t
	}
	if toStr := q.Get("to"); toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			writeBadRequest(w, "invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.To = &t
	}

	if hash := q.Get("hash"); hash != "" {
		req.Hash = &hash
	}
	for name, dst := range map[string]**uint64{"minNonce": &req.MinNonce, "maxNonce": &req.MaxNonce} {
		if s := q.Get(name); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				writeBadRequest(w, fmt.Sprintf("invalid %s: %v", name, err))
				return
			}
			*dst = &n
		}
	}

	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	resp, err := h.wallet.PendingTransactions(&req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balance handles GET /account/balance
// @Summary      Get balance (USD = ETH * rate)
// @Description  Gets the active account's ether balance with the ETH/USD rate
// @Tags         account
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /account/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.wallet.Balance(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *WalletHandler) writeAccount(w http.ResponseWriter, acc *session.Account) {
	resp := model.AccountResponse{
		Handle:  acc.Handle,
		Address: acc.Address.Hex(),
	}
	qr, err := generateQRCode(resp.Address)
	if err != nil {
		h.log.Warn("Failed to generate QR code", "err", err)
	} else {
		resp.QR = qr
	}
	writeJSON(w, http.StatusOK, resp)
}

// toIntent converts the request into a pipeline intent
func toIntent(req *model.InvokeRequest) (*wallet.Intent, error) {
	intent := &wallet.Intent{
		To:      req.To,
		Method:  req.Method,
		ABI:     req.ABI,
		Send:    req.Send,
		Timeout: req.Timeout,
	}

	for i, raw := range req.Params {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid param %d: %w", i, err)
		}
		intent.Params = append(intent.Params, v)
	}

	if req.Data != "" {
		data, err := common.DecodeHex(req.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid data: %w", err)
		}
		intent.Data = data
	}
	if req.Value != "" {
		v, err := common.ParseBigInt(req.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
		intent.Value = v
	}
	if req.GasPrice != "" {
		v, err := common.ParseBigInt(req.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid gasPrice: %w", err)
		}
		intent.GasPrice = v
	}
	if req.Gas != "" {
		v, err := common.ParseBigInt(req.Gas)
		if err != nil || !v.IsUint64() {
			return nil, fmt.Errorf("invalid gas %q", req.Gas)
		}
		intent.Gas = v.Uint64()
	}
	return intent, nil
}

// writeError maps domain errors to status codes
func (h *WalletHandler) writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, ""
	switch {
	case errors.Is(err, account.ErrPasswordTooShort):
		status, code = http.StatusBadRequest, model.CodePasswordTooShort
	case errors.Is(err, account.ErrInvalidHandle), errors.Is(err, account.ErrInvalidKeystore):
		status, code = http.StatusBadRequest, model.CodeInvalidRequest
	case errors.Is(err, account.ErrHandleTaken):
		status, code = http.StatusConflict, model.CodeHandleTaken
	case errors.Is(err, account.ErrBadCredentials):
		status, code = http.StatusUnauthorized, model.CodeBadCredentials
	case errors.Is(err, account.ErrNotLoggedIn):
		status, code = http.StatusUnauthorized, model.CodeNotLoggedIn
	case errors.Is(err, account.ErrDBWriteFailed):
		code = model.CodeDBWriteFailed
	case errors.Is(err, wallet.ErrTransactionFailed):
		status, code = http.StatusUnprocessableEntity, model.CodeTransactionFailed
	case errors.Is(err, wallet.ErrTransactionInvalid):
		status, code = http.StatusUnprocessableEntity, model.CodeTransactionInvalid
	case errors.Is(err, wallet.ErrRLPEncoding):
		status, code = http.StatusBadGateway, model.CodeRLPEncodingError
	case errors.Is(err, wallet.ErrRawTransaction), errors.Is(err, wallet.ErrNonceRetriesExhausted):
		status, code = http.StatusBadGateway, model.CodeRawTransaction
	}
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err)
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: msg, Code: model.CodeInvalidRequest})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(strings.ToLower(address), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
