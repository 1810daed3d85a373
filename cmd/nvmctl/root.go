package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tinyfirm/nvmstore/flash"
	"github.com/tinyfirm/nvmstore/nvm"
	"github.com/tinyfirm/nvmstore/partition"
	"github.com/tinyfirm/nvmstore/pkg/filedev"
)

var (
	imagePath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "nvmctl",
	Short: "Device state store image tool",
	Long: `nvmctl works with images of the persistent state store used by the
radio stack: the partition table, the per-group partitions and their
checksum trailers.

Commands:
  format     Format a fresh image
  dump       List partitions with checksum state and fingerprints
  state      Show the persisted protocol context
  provision  Write device identity into the secure-element group
  snapshot   Save or load compressed image snapshots`,
	Version: "0.2.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "", "path to the store image (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func initConfig() {
	viper.SetConfigName("nvmctl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.nvmctl")

	viper.SetDefault("image", "nvm.img")
	viper.SetDefault("size", 32*1024)
	viper.SetDefault("partitions", 8)
	viper.SetDefault("region", "EU868")

	viper.SetEnvPrefix("NVMCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: config file error: %v\n", err)
		}
	}

	if imagePath == "" {
		imagePath = viper.GetString("image")
	}
}

// openImage opens the configured image file as a device.
func openImage() (*filedev.FileDev, func(), error) {
	file, err := os.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening image %q", imagePath)
	}
	dev, err := filedev.New(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return dev, func() { _ = file.Close() }, nil
}

// openStore opens the partition table of the configured image.
func openStore() (*partition.Store, func(), error) {
	dev, closeDev, err := openImage()
	if err != nil {
		return nil, nil, err
	}
	block, err := flash.New(dev, 0, dev.Size())
	if err != nil {
		closeDev()
		return nil, nil, err
	}
	store, err := partition.Open(block)
	if err != nil {
		closeDev()
		return nil, nil, err
	}
	return store, closeDev, nil
}

// idleStack satisfies the coordinator; nothing runs while nvmctl owns the image.
type idleStack struct{}

func (idleStack) Pause() error { return nil }
func (idleStack) Resume()      {}

func defaultRegion() nvm.Region {
	r, err := parseRegion(viper.GetString("region"))
	if err != nil {
		return nvm.RegionEU868
	}
	return r
}

func parseRegion(name string) (nvm.Region, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for r := nvm.RegionAS923; r <= nvm.RegionUS915; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, errors.Errorf("unknown region %q", name)
}
