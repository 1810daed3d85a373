package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tinyfirm/nvmstore/crc"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "List partitions with checksum state and payload fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump()
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump() error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	header := color.New(color.Bold)
	valid := color.New(color.FgGreen).SprintFunc()
	invalid := color.New(color.FgRed).SprintFunc()

	header.Printf("partitions in %s (%d bytes free)\n", imagePath, store.Free())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tOFFSET\tSIZE\tCRC\tFINGERPRINT")
	for _, info := range store.Partitions() {
		h, ok := store.Find(info.Label)
		if !ok {
			continue
		}
		m, err := h.Map()
		if err != nil {
			return err
		}

		state := invalid("invalid")
		if crc.Matches(m) {
			state = valid("ok")
		}
		fingerprint := xxhash.Sum64(m[:len(m)-crc.TrailerSize])
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%016x\n", info.Label, info.Offset, info.Size, state, fingerprint)
	}
	return w.Flush()
}
