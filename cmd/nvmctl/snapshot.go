package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save or load compressed image snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <snapshot.lz4>",
	Short: "Compress the image into a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshotSave(args[0])
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load <snapshot.lz4>",
	Short: "Restore the image from a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshotLoad(args[0])
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd)
}

func runSnapshotSave(path string) error {
	image, err := os.Open(imagePath)
	if err != nil {
		return errors.Wrapf(err, "opening image %q", imagePath)
	}
	defer image.Close()

	out, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	n, err := io.Copy(zw, image)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := zw.Close(); err != nil {
		return errors.WithStack(err)
	}

	fmt.Printf("saved %d bytes to %s\n", n, path)
	return nil
}

func runSnapshotLoad(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening snapshot %q", path)
	}
	defer in.Close()

	image, err := os.Create(imagePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer image.Close()

	n, err := io.Copy(image, lz4.NewReader(in))
	if err != nil {
		return errors.WithStack(err)
	}

	fmt.Printf("restored %d bytes into %s\n", n, imagePath)
	return nil
}
