package main

import (
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tinyfirm/nvmstore/nvm"
)

var stateRecoverRegion bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the persisted protocol context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runState()
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().BoolVar(&stateRecoverRegion, "recover-region", false,
		"run the boot-time region recovery and show the trust level")
}

func runState() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	c, err := nvm.New(store, idleStack{})
	if err != nil {
		return err
	}

	if stateRecoverRegion {
		region, trust := c.RecoverRegion(defaultRegion())
		color.New(color.Bold).Println("region recovery")
		fmt.Printf("  region: %s\n  trust:  %s\n", region, trust)
	}

	if err := c.RestoreAll(); err != nil {
		return err
	}
	s := c.State()

	color.New(color.Bold).Println("mac2")
	fmt.Printf("  region:  %s\n", s.Mac2.Region)
	fmt.Printf("  devaddr: %08x\n", s.Mac2.DevAddr)
	fmt.Printf("  netid:   %06x\n", s.Mac2.NetID)
	fmt.Printf("  rx2:     %d Hz / DR%d\n", s.Mac2.Rx2Frequency, s.Mac2.Rx2Datarate)

	color.New(color.Bold).Println("crypto")
	fmt.Printf("  devnonce:  %d\n", s.Crypto.DevNonce)
	fmt.Printf("  fcnt-up:   %d\n", s.Crypto.FCntUp)
	fmt.Printf("  fcnt-down: %d/%d\n", s.Crypto.NFCntDown, s.Crypto.AFCntDown)

	color.New(color.Bold).Println("secure element")
	fmt.Printf("  deveui:  %s\n", hex.EncodeToString(s.SecureElement.DevEui[:]))
	fmt.Printf("  joineui: %s\n", hex.EncodeToString(s.SecureElement.JoinEui[:]))

	if verbose {
		color.New(color.Bold).Println("classb")
		fmt.Printf("  beacon:    %d Hz\n", s.ClassB.BeaconFrequency)
		fmt.Printf("  ping slot: %d Hz / DR%d\n", s.ClassB.PingSlotFrequency, s.ClassB.PingSlotDatarate)
	}
	return nil
}
