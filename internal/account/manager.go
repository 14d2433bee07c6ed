package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/metrics"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/store"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// MinPasswordLength is the shortest password register accepts
const MinPasswordLength = 6

// Store is the backing key-value store
type Store interface {
	Get(key string) ([]byte, error)
	Has(key string) (bool, error)
	Put(key string, value []byte) error
	PutPersistent(value []byte) error
	GetPersistent() ([]byte, error)
	RemovePersistent() error
}

// Funder sends starter funds to a freshly registered address
type Funder interface {
	Fund(ctx context.Context, address common.Address) error
}

// RegisterOptions tunes Register
type RegisterOptions struct {
	DoNotFund bool
	Persist   bool
}

// Manager registers, logs in and logs out accounts and keeps the session's active account.
type Manager struct {
	store   Store
	session *session.Session
	funder  Funder
	opts    crypto.Options

	// serializes the handle-taken check with the write
	registerMu sync.Mutex

	hooksMu     sync.Mutex
	logoutHooks []func()

	log log.Logger
}

// NewManager creates a Manager. funder may be nil.
func NewManager(st Store, sess *session.Session, funder Funder, opts crypto.Options) *Manager {
	return &Manager{
		store:   st,
		session: sess,
		funder:  funder,
		opts:    opts,
		log:     log.New("module", "account"),
	}
}

// Session returns the session the manager writes to
func (m *Manager) Session() *session.Session {
	return m.session
}

// OnLogout registers fn to run on every Logout
func (m *Manager) OnLogout(fn func()) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.logoutHooks = append(m.logoutHooks, fn)
}

// Register creates a new key, stores it encrypted under handle and logs the account in.
// password must be []byte for security (caller should zero it after use)
func (m *Manager) Register(ctx context.Context, handle string, password []byte, opts RegisterOptions) (*session.Account, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if handle == "" {
		return nil, ErrInvalidHandle
	}

	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	taken, err := m.store.Has(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to look up handle: %w", err)
	}
	if taken {
		return nil, ErrHandleTaken
	}

	// Generate secp256k1 private key
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	privateKey := ethcrypto.FromECDSA(key)
	defer clear(privateKey)

	record, err := crypto.Seal(privateKey, password, m.opts)
	if err != nil {
		return nil, err
	}
	record.Handle = handle
	record.Persist = opts.Persist

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore: %w", err)
	}
	if err := m.store.Put(handle, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBWriteFailed, err)
	}

	acc := &session.Account{
		Handle:     handle,
		Address:    ethcrypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
		Keystore:   *record,
	}
	acc.Keystore.Handle = ""
	acc.Keystore.Persist = false
	m.activate(acc, opts.Persist)
	metrics.Registrations.Inc()
	m.log.Info("Registered account", "handle", handle, "address", acc.Address)

	if !opts.DoNotFund && m.funder != nil {
		if err := m.funder.Fund(ctx, acc.Address); err != nil {
			m.log.Warn("Failed to fund new account", "address", acc.Address, "err", err)
		}
	}

	return acc, nil
}

// Login decrypts the keystore stored under handle and makes it the active account.
// password must be []byte for security (caller should zero it after use)
func (m *Manager) Login(handle string, password []byte, persist bool) (*session.Account, error) {
	if len(password) == 0 {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrBadCredentials
	}

	data, err := m.store.Get(handle)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Error("Failed to read keystore", "handle", handle, "err", err)
		}
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrBadCredentials
	}

	var record model.KeystoreRecord
	if err := json.Unmarshal(data, &record); err != nil {
		m.log.Error("Stored keystore is corrupt", "handle", handle, "err", err)
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrBadCredentials
	}

	acc, err := m.unlock(&record, password)
	if err != nil {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, err
	}
	acc.Handle = handle

	m.activate(acc, persist)
	metrics.Logins.WithLabelValues("ok").Inc()
	m.log.Info("Logged in", "handle", handle, "address", acc.Address)
	return acc, nil
}

// Logout clears the active account, runs logout hooks and drops the persisted session.
func (m *Manager) Logout() {
	m.session.Deactivate()

	m.hooksMu.Lock()
	hooks := append([]func(){}, m.logoutHooks...)
	m.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	if err := m.store.RemovePersistent(); err != nil {
		m.log.Warn("Failed to remove persisted session", "err", err)
	}
	m.log.Info("Logged out")
}

// ExportKey returns the active account's keystore as a version 3 document
func (m *Manager) ExportKey() (*model.ExportedKey, error) {
	acc, ok := m.session.Account()
	if !ok || acc.PrivateKey == nil {
		return nil, ErrNotLoggedIn
	}
	if acc.Keystore.CipherText == "" {
		return nil, ErrNotLoggedIn
	}
	return crypto.ExportedFromRecord(&acc.Keystore, strings.ToLower(acc.Address.Hex())), nil
}

// ImportKey decrypts a version 3 keystore document. With an empty handle the
// account is returned without touching the session or the store; otherwise it
// is stored under handle and logged in.
// password must be []byte for security (caller should zero it after use)
func (m *Manager) ImportKey(handle string, password, keyJSON []byte) (*session.Account, error) {
	var exported model.ExportedKey
	if err := json.Unmarshal(keyJSON, &exported); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeystore, err)
	}
	if exported.Version != 3 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeystore, exported.Version)
	}

	record := crypto.RecordFromExported(&exported)
	acc, err := m.unlock(record, password)
	if err != nil {
		return nil, err
	}
	if exported.Address != "" && !strings.EqualFold(common.HexToAddress(exported.Address).Hex(), acc.Address.Hex()) {
		return nil, ErrBadCredentials
	}
	if handle == "" {
		return acc, nil
	}

	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	taken, err := m.store.Has(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to look up handle: %w", err)
	}
	if taken {
		return nil, ErrHandleTaken
	}

	stored := *record
	stored.Handle = handle
	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keystore: %w", err)
	}
	if err := m.store.Put(handle, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBWriteFailed, err)
	}

	acc.Handle = handle
	m.activate(acc, false)
	m.log.Info("Imported account", "handle", handle, "address", acc.Address)
	return acc, nil
}

// Persisted returns the persisted session record without unlocking it
func (m *Manager) Persisted() (*model.PersistedSession, error) {
	data, err := m.store.GetPersistent()
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoPersisted
	}
	if err != nil {
		return nil, err
	}
	var persisted model.PersistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal persisted session: %w", err)
	}
	return &persisted, nil
}

// Resume unlocks the persisted session with password and makes it active again
func (m *Manager) Resume(password []byte) (*session.Account, error) {
	persisted, err := m.Persisted()
	if err != nil {
		return nil, err
	}
	acc, err := m.unlock(&persisted.Keystore, password)
	if err != nil {
		return nil, err
	}
	acc.Handle = persisted.Handle
	m.session.Activate(acc)
	m.log.Info("Resumed session", "handle", acc.Handle, "address", acc.Address)
	return acc, nil
}

// ChangePassword re-encrypts the keystore stored under handle. The active
// account, if it is the same handle, picks up the new keystore.
func (m *Manager) ChangePassword(handle string, oldPassword, newPassword []byte) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	m.registerMu.Lock()
	defer m.registerMu.Unlock()

	data, err := m.store.Get(handle)
	if err != nil {
		return ErrBadCredentials
	}
	var record model.KeystoreRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return ErrBadCredentials
	}

	resealed, err := crypto.Reseal(&record, oldPassword, newPassword, m.opts)
	if err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			return ErrBadCredentials
		}
		return err
	}
	out, err := json.Marshal(resealed)
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}
	if err := m.store.Put(handle, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDBWriteFailed, err)
	}

	// the persisted session carries its own copy of the keystore
	if persisted, err := m.Persisted(); err == nil && persisted.Handle == handle {
		persisted.Keystore = *resealed
		persisted.Keystore.Handle = ""
		persisted.Keystore.Persist = false
		data, err := json.Marshal(persisted)
		if err == nil {
			err = m.store.PutPersistent(data)
		}
		if err != nil {
			m.log.Warn("Failed to rewrite persisted session, dropping it", "handle", handle, "err", err)
			if err := m.store.RemovePersistent(); err != nil {
				return fmt.Errorf("%w: %v", ErrDBWriteFailed, err)
			}
		}
	}

	if acc, ok := m.session.Account(); ok && acc.Handle == handle {
		updated := *acc
		updated.Keystore = *resealed
		updated.Keystore.Handle = ""
		updated.Keystore.Persist = false
		m.session.Activate(&updated)
	}
	m.log.Info("Changed keystore password", "handle", handle)
	return nil
}

// unlock runs derive, MAC check and decrypt. Every failure is ErrBadCredentials.
func (m *Manager) unlock(record *model.KeystoreRecord, password []byte) (*session.Account, error) {
	if len(password) == 0 {
		return nil, ErrBadCredentials
	}
	privateKey, err := crypto.Open(record, password)
	if err != nil {
		m.log.Debug("Keystore unlock failed", "id", record.ID, "err", err)
		return nil, ErrBadCredentials
	}
	defer clear(privateKey)

	key, err := ethcrypto.ToECDSA(privateKey)
	if err != nil {
		return nil, ErrBadCredentials
	}

	keystore := *record
	keystore.Handle = ""
	keystore.Persist = false
	return &session.Account{
		Address:    ethcrypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
		Keystore:   keystore,
	}, nil
}

func (m *Manager) activate(acc *session.Account, persist bool) {
	m.session.Activate(acc)
	if !persist {
		return
	}

	data, err := json.Marshal(&model.PersistedSession{
		Handle:   acc.Handle,
		Address:  acc.Address.Hex(),
		Keystore: acc.Keystore,
	})
	if err != nil {
		m.log.Warn("Failed to marshal persisted session", "err", err)
		return
	}
	if err := m.store.PutPersistent(data); err != nil {
		m.log.Warn("Failed to persist session", "err", err)
	}
}
