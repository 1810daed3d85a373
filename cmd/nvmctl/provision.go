package main

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tinyfirm/nvmstore/nvm"
)

var (
	provisionDevEui  string
	provisionJoinEui string
	provisionAppKey  string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Write device identity into the secure-element group",
	Long: `Writes DevEUI, JoinEUI and AppKey into the secure-element group and
flushes it. Identities not given on the command line are generated
randomly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProvision()
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVar(&provisionDevEui, "deveui", "", "DevEUI, 8 bytes hex")
	provisionCmd.Flags().StringVar(&provisionJoinEui, "joineui", "", "JoinEUI, 8 bytes hex")
	provisionCmd.Flags().StringVar(&provisionAppKey, "appkey", "", "AppKey, 16 bytes hex")
}

func runProvision() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	c, err := nvm.New(store, idleStack{})
	if err != nil {
		return err
	}
	if err := c.RestoreAll(); err != nil {
		return err
	}
	se := &c.State().SecureElement

	if err := fillHex(se.DevEui[:], provisionDevEui); err != nil {
		return errors.Wrap(err, "deveui")
	}
	if err := fillHex(se.JoinEui[:], provisionJoinEui); err != nil {
		return errors.Wrap(err, "joineui")
	}
	if err := fillHex(se.AppKey[:], provisionAppKey); err != nil {
		return errors.Wrap(err, "appkey")
	}

	c.Seal(nvm.GroupSecureElement)
	if err := c.Flush(); err != nil {
		return err
	}

	fmt.Printf("deveui:  %s\njoineui: %s\nappkey:  %s\n",
		hex.EncodeToString(se.DevEui[:]),
		hex.EncodeToString(se.JoinEui[:]),
		hex.EncodeToString(se.AppKey[:]))
	return nil
}

// fillHex decodes value into dst, or fills dst with random identity bytes
// when value is empty.
func fillHex(dst []byte, value string) error {
	if value == "" {
		id := uuid.New()
		for len(dst) > 0 {
			n := copy(dst, id[:])
			dst = dst[n:]
			id = uuid.New()
		}
		return nil
	}
	p, err := hex.DecodeString(value)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(p) != len(dst) {
		return errors.Errorf("expected %d bytes, got %d", len(dst), len(p))
	}
	copy(dst, p)
	return nil
}
