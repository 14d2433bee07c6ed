// rekey re-encrypts a stored keystore under a new password.
// Usage: rekey --db ./wallet-db --handle alice
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/eth-wallet/internal/account"
	"github.com/AlexZinkM/eth-wallet/internal/config"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/store"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "rekey"
	app.Usage = "re-encrypt a stored keystore under a new password"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			Value:  "./wallet-db",
			Usage:  "keystore database directory",
			EnvVar: "DB_PATH",
		},
		cli.StringFlag{
			Name:  "handle",
			Usage: "handle of the account to re-encrypt",
		},
		cli.StringFlag{
			Name:  "kdf",
			Value: crypto.KDFPBKDF2,
			Usage: "key derivation function for the new keystore (pbkdf2 or scrypt)",
		},
		cli.IntFlag{
			Name:  "rounds",
			Value: crypto.DefaultRounds,
			Usage: "pbkdf2 iterations or scrypt N",
		},
	}
	app.Action = rekey

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rekey(ctx *cli.Context) error {
	handle := ctx.String("handle")
	if handle == "" {
		return cli.NewExitError("--handle is required", 2)
	}

	st, err := store.Open(ctx.String("db"), 0, 0)
	if err != nil {
		return err
	}
	defer st.Close()

	oldPassword, err := config.ReadPassword("Current password: ")
	if err != nil {
		return err
	}
	defer clear(oldPassword)
	newPassword, err := config.ReadPassword("New password: ")
	if err != nil {
		return err
	}
	defer clear(newPassword)
	confirm, err := config.ReadPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	defer clear(confirm)
	if !bytes.Equal(newPassword, confirm) {
		return errors.New("passwords do not match")
	}

	m := account.NewManager(st, session.New(), nil, crypto.Options{
		KDF:    ctx.String("kdf"),
		Rounds: ctx.Int("rounds"),
	})
	if err := m.ChangePassword(handle, oldPassword, newPassword); err != nil {
		return err
	}
	log.Info("Keystore re-encrypted", "handle", handle)
	return nil
}
