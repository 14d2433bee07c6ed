package account

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/store"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = crypto.Options{KDF: crypto.KDFPBKDF2, Rounds: 1024}

type fundRecorder struct {
	mu        sync.Mutex
	addresses []common.Address
	err       error
}

func (f *fundRecorder) Fund(_ context.Context, address common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, address)
	return f.err
}

// countingStore records every call so tests can assert the store was not touched
type countingStore struct {
	Store
	calls   int
	putErr  error
	records map[string][]byte
}

func (c *countingStore) Get(key string) ([]byte, error) {
	c.calls++
	v, ok := c.records[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (c *countingStore) Has(key string) (bool, error) {
	c.calls++
	_, ok := c.records[key]
	return ok, nil
}

func (c *countingStore) Put(key string, value []byte) error {
	c.calls++
	if c.putErr != nil {
		return c.putErr
	}
	c.records[key] = value
	return nil
}

func (c *countingStore) PutPersistent([]byte) error     { c.calls++; return nil }
func (c *countingStore) GetPersistent() ([]byte, error) { c.calls++; return nil, store.ErrNotFound }
func (c *countingStore) RemovePersistent() error        { c.calls++; return nil }

func newManager(t *testing.T) (*Manager, *fundRecorder) {
	t.Helper()
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	funder := &fundRecorder{}
	return NewManager(st, session.New(), funder, testOpts), funder
}

func TestRegisterThenLogin(t *testing.T) {
	m, funder := newManager(t)

	registered, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.Handle)
	assert.Equal(t, crypto.KDFPBKDF2, registered.Keystore.KDF)
	assert.False(t, registered.Keystore.Persist)
	assert.Len(t, registered.Address.Bytes(), common.AddressLength)
	assert.Equal(t, ethcrypto.PubkeyToAddress(registered.PrivateKey.PublicKey), registered.Address)
	assert.Equal(t, []common.Address{registered.Address}, funder.addresses)

	active, ok := m.Session().Account()
	require.True(t, ok)
	assert.Equal(t, registered.Address, active.Address)

	m.Logout()
	assert.Equal(t, session.StateNone, m.Session().State())

	loggedIn, err := m.Login("alice", []byte("correcthorse"), false)
	require.NoError(t, err)
	assert.Equal(t, registered.Address, loggedIn.Address)
	assert.Equal(t, ethcrypto.FromECDSA(registered.PrivateKey), ethcrypto.FromECDSA(loggedIn.PrivateKey))
	assert.Equal(t, session.StateActive, m.Session().State())
}

func TestLoginFailuresShareOneError(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)
	m.Logout()

	_, wrongPassword := m.Login("alice", []byte("wrongpassword"), false)
	_, unknownHandle := m.Login("mallory", []byte("correcthorse"), false)
	_, emptyPassword := m.Login("alice", nil, false)

	for _, err := range []error{wrongPassword, unknownHandle, emptyPassword} {
		assert.Same(t, ErrBadCredentials, err)
	}
	assert.Equal(t, session.StateNone, m.Session().State())
}

func TestLoginCorruptRecord(t *testing.T) {
	st := &countingStore{records: map[string][]byte{"alice": []byte("{not json")}}
	m := NewManager(st, session.New(), nil, testOpts)
	_, err := m.Login("alice", []byte("correcthorse"), false)
	assert.Same(t, ErrBadCredentials, err)
}

func TestRegisterShortPasswordSkipsStore(t *testing.T) {
	st := &countingStore{records: map[string][]byte{}}
	m := NewManager(st, session.New(), nil, testOpts)

	_, err := m.Register(context.Background(), "alice", []byte("abcd"), RegisterOptions{})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Zero(t, st.calls)
}

func TestRegisterHandleTaken(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)

	_, err = m.Register(context.Background(), "alice", []byte("otherpassword"), RegisterOptions{DoNotFund: true})
	assert.ErrorIs(t, err, ErrHandleTaken)

	_, err = m.Register(context.Background(), "", []byte("otherpassword"), RegisterOptions{DoNotFund: true})
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestRegisterWriteFailure(t *testing.T) {
	st := &countingStore{records: map[string][]byte{}, putErr: errors.New("disk full")}
	m := NewManager(st, session.New(), nil, testOpts)

	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{})
	assert.ErrorIs(t, err, ErrDBWriteFailed)
	assert.Empty(t, st.records)
	assert.Equal(t, session.StateNone, m.Session().State())
}

func TestRegisterFundingFailureIsNotFatal(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	defer st.Close()
	funder := &fundRecorder{err: errors.New("no coinbase")}
	m := NewManager(st, session.New(), funder, testOpts)

	acc, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{acc.Address}, funder.addresses)
}

func TestRegisterDoNotFund(t *testing.T) {
	m, funder := newManager(t)
	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)
	assert.Empty(t, funder.addresses)
}

func TestExportImportRoundTrip(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.ExportKey()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	acc, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)

	exported, err := m.ExportKey()
	require.NoError(t, err)
	assert.Equal(t, 3, exported.Version)
	assert.NotContains(t, exported.Address, "0x")
	assert.Equal(t, acc.Keystore.ID, exported.ID)

	keyJSON, err := json.Marshal(exported)
	require.NoError(t, err)

	imported, err := m.ImportKey("", []byte("correcthorse"), keyJSON)
	require.NoError(t, err)
	assert.Equal(t, ethcrypto.FromECDSA(acc.PrivateKey), ethcrypto.FromECDSA(imported.PrivateKey))
	assert.Equal(t, acc.Address, imported.Address)

	_, err = m.ImportKey("", []byte("wrongpassword"), keyJSON)
	assert.Same(t, ErrBadCredentials, err)

	_, err = m.ImportKey("", []byte("correcthorse"), []byte("nope"))
	assert.ErrorIs(t, err, ErrInvalidKeystore)
}

func TestImportUnderHandle(t *testing.T) {
	m, _ := newManager(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyJSON, err := keystore.EncryptKey(&keystore.Key{
		Id:         uuid.New(),
		Address:    ethcrypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, "correcthorse", keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	acc, err := m.ImportKey("bob", []byte("correcthorse"), keyJSON)
	require.NoError(t, err)
	assert.Equal(t, "bob", acc.Handle)
	assert.Equal(t, session.StateActive, m.Session().State())

	_, err = m.ImportKey("bob", []byte("correcthorse"), keyJSON)
	assert.ErrorIs(t, err, ErrHandleTaken)

	m.Logout()
	loggedIn, err := m.Login("bob", []byte("correcthorse"), false)
	require.NoError(t, err)
	assert.Equal(t, ethcrypto.PubkeyToAddress(key.PublicKey), loggedIn.Address)
}

func TestPersistAndResume(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.Persisted()
	assert.ErrorIs(t, err, ErrNoPersisted)

	acc, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true, Persist: true})
	require.NoError(t, err)

	persisted, err := m.Persisted()
	require.NoError(t, err)
	assert.Equal(t, "alice", persisted.Handle)
	assert.Equal(t, acc.Address.Hex(), persisted.Address)
	assert.NotEmpty(t, persisted.Keystore.CipherText)

	m.Session().Deactivate()
	resumed, err := m.Resume([]byte("correcthorse"))
	require.NoError(t, err)
	assert.Equal(t, acc.Address, resumed.Address)
	assert.Equal(t, "alice", resumed.Handle)

	_, err = m.Resume([]byte("wrongpassword"))
	assert.Same(t, ErrBadCredentials, err)

	m.Logout()
	_, err = m.Persisted()
	assert.ErrorIs(t, err, ErrNoPersisted)
}

func TestLogoutRunsHooks(t *testing.T) {
	m, _ := newManager(t)
	calls := 0
	m.OnLogout(func() { calls++ })

	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)
	m.Logout()
	m.Logout()
	assert.Equal(t, 2, calls)
}

func TestChangePassword(t *testing.T) {
	m, _ := newManager(t)
	acc, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)

	assert.Same(t, ErrBadCredentials, m.ChangePassword("alice", []byte("wrongpassword"), []byte("batterystaple")))
	assert.ErrorIs(t, m.ChangePassword("alice", []byte("correcthorse"), []byte("abc")), ErrPasswordTooShort)
	require.NoError(t, m.ChangePassword("alice", []byte("correcthorse"), []byte("batterystaple")))

	active, ok := m.Session().Account()
	require.True(t, ok)
	assert.Equal(t, acc.Keystore.ID, active.Keystore.ID)
	assert.NotEqual(t, acc.Keystore.CipherText, active.Keystore.CipherText)

	m.Logout()
	_, err = m.Login("alice", []byte("correcthorse"), false)
	assert.Same(t, ErrBadCredentials, err)
	loggedIn, err := m.Login("alice", []byte("batterystaple"), false)
	require.NoError(t, err)
	assert.Equal(t, acc.Address, loggedIn.Address)
}

func TestChangePasswordRewritesPersistedSession(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	defer st.Close()

	m := NewManager(st, session.New(), nil, testOpts)
	acc, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true, Persist: true})
	require.NoError(t, err)

	// a fresh manager over the same store, as cmd/rekey runs it
	rekey := NewManager(st, session.New(), nil, testOpts)
	require.NoError(t, rekey.ChangePassword("alice", []byte("correcthorse"), []byte("batterystaple")))

	restarted := NewManager(st, session.New(), nil, testOpts)
	_, err = restarted.Resume([]byte("correcthorse"))
	assert.Same(t, ErrBadCredentials, err)

	resumed, err := restarted.Resume([]byte("batterystaple"))
	require.NoError(t, err)
	assert.Equal(t, "alice", resumed.Handle)
	assert.Equal(t, acc.Address, resumed.Address)
}

func TestChangePasswordLeavesOtherPersistedSession(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Register(context.Background(), "alice", []byte("correcthorse"), RegisterOptions{DoNotFund: true, Persist: true})
	require.NoError(t, err)
	_, err = m.Register(context.Background(), "bob", []byte("correcthorse"), RegisterOptions{DoNotFund: true})
	require.NoError(t, err)

	require.NoError(t, m.ChangePassword("bob", []byte("correcthorse"), []byte("batterystaple")))

	resumed, err := m.Resume([]byte("correcthorse"))
	require.NoError(t, err)
	assert.Equal(t, "alice", resumed.Handle)
}
