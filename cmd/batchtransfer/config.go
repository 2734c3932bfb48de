package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

const defaultTimeout = 15 * time.Second

// config is the content of the YAML configuration file. Command line flags
// override it.
type config struct {
	RPC      string        `yaml:"rpc"`
	Timeout  time.Duration `yaml:"timeout"`
	Contract string        `yaml:"contract"`
	Wallet   walletConfig  `yaml:"wallet"`
}

type walletConfig struct {
	Path     string `yaml:"path"`
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
}

func readConfig(path string) (config, error) {
	var cfg config

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		err = yaml.NewDecoder(f).Decode(&cfg)
		if err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("decode config file: %w", err)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return cfg, nil
}

// loadConfig reads the config file and applies global flags set by the user.
func loadConfig(c *cli.Context) (config, error) {
	cfg, err := readConfig(c.GlobalString(configFlag))
	if err != nil {
		return cfg, err
	}

	override := func(dst *string, flag string) {
		if v := c.GlobalString(flag); v != "" {
			*dst = v
		}
	}

	override(&cfg.RPC, rpcFlag)
	override(&cfg.Contract, contractFlag)
	override(&cfg.Wallet.Path, walletFlag)
	override(&cfg.Wallet.Account, accountFlag)
	override(&cfg.Wallet.Password, passwordFlag)

	if d := c.GlobalDuration(timeoutFlag); d > 0 {
		cfg.Timeout = d
	}

	if cfg.RPC == "" {
		return cfg, errors.New("missing Neo RPC endpoint")
	}

	return cfg, nil
}
