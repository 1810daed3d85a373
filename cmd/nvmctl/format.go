package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinyfirm/nvmstore/flash"
	"github.com/tinyfirm/nvmstore/partition"
	"github.com/tinyfirm/nvmstore/pkg/filedev"
)

var (
	formatSize       int64
	formatPartitions int
	formatForce      bool
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format a fresh store image",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat()
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().Int64Var(&formatSize, "size", 0, "image size in bytes (default from config)")
	formatCmd.Flags().IntVar(&formatPartitions, "partitions", 0, "descriptor capacity (default from config)")
	formatCmd.Flags().BoolVar(&formatForce, "force", false, "overwrite an existing valid table")
}

func runFormat() error {
	if formatSize == 0 {
		formatSize = viper.GetInt64("size")
	}
	if formatPartitions == 0 {
		formatPartitions = viper.GetInt("partitions")
	}

	file, err := os.OpenFile(imagePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating image %q", imagePath)
	}
	defer file.Close()
	if err := file.Truncate(formatSize); err != nil {
		return errors.WithStack(err)
	}

	dev, err := filedev.New(file)
	if err != nil {
		return err
	}
	block, err := flash.New(dev, 0, dev.Size())
	if err != nil {
		return err
	}

	if _, err := partition.Open(block); err == nil && !formatForce {
		return errors.New("image already holds a valid table, use --force to overwrite")
	}

	if _, err := partition.Format(block, formatPartitions); err != nil {
		return err
	}

	fmt.Printf("formatted %s: %d bytes, %d partition slots\n", imagePath, formatSize, formatPartitions)
	return nil
}
