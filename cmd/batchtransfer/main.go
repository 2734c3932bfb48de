package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const (
	configFlag   = "config"
	rpcFlag      = "rpc"
	timeoutFlag  = "timeout"
	contractFlag = "contract"
	walletFlag   = "wallet"
	accountFlag  = "account"
	passwordFlag = "password"
	verboseFlag  = "verbose"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "batchtransfer"
	app.Usage = "Send GAS and NEP-17 tokens to many recipients in one transaction"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   configFlag + ", c",
			Usage:  "Path to YAML configuration file",
			EnvVar: "BATCHTRANSFER_CONFIG",
		},
		cli.StringFlag{
			Name:   rpcFlag + ", r",
			Usage:  "Network address of the Neo RPC server",
			EnvVar: "BATCHTRANSFER_RPC",
		},
		cli.DurationFlag{
			Name:   timeoutFlag,
			Usage:  "Timeout of RPC requests",
			EnvVar: "BATCHTRANSFER_TIMEOUT",
		},
		cli.StringFlag{
			Name:   contractFlag,
			Usage:  "Address of BatchTransfer contract",
			EnvVar: "BATCHTRANSFER_CONTRACT",
		},
		cli.StringFlag{
			Name:   walletFlag + ", w",
			Usage:  "Path to NEP-6 wallet",
			EnvVar: "BATCHTRANSFER_WALLET",
		},
		cli.StringFlag{
			Name:   accountFlag + ", a",
			Usage:  "Wallet account to sign transactions with (default change address)",
			EnvVar: "BATCHTRANSFER_ACCOUNT",
		},
		cli.StringFlag{
			Name:   passwordFlag,
			Usage:  "Password of the wallet account",
			EnvVar: "BATCHTRANSFER_PASSWORD",
		},
		cli.BoolFlag{
			Name:  verboseFlag + ", v",
			Usage: "Enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		deployCommand,
		infoCommand,
		payCommand,
		payTokenCommand,
		eventsCommand,
	}

	return app
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	if c.GlobalBool(verboseFlag) {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
