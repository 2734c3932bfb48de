package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/batchtransfer-contract/contracts"
	"github.com/nspcc-dev/batchtransfer-contract/deploy"
	"github.com/nspcc-dev/batchtransfer-contract/payouts"
	"github.com/nspcc-dev/batchtransfer-contract/rpc/batchtransfer"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const gasDecimals = 8

var deployCommand = cli.Command{
	Name:  "deploy",
	Usage: "Deploy BatchTransfer contract or update it to the local version",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "dir",
			Usage: "Directory with compiled contract.nef and manifest.json",
			Value: contracts.BatchTransferDir,
		},
		cli.IntFlag{
			Name:  "max-batch-size",
			Usage: "Recipient limit set on the first deployment (0 for contract default)",
		},
	},
	Action: deployAction,
}

var infoCommand = cli.Command{
	Name:   "info",
	Usage:  "Print state of the deployed BatchTransfer contract",
	Action: infoAction,
}

var payCommand = cli.Command{
	Name:      "pay",
	Usage:     "Send GAS to recipients listed in the payout file",
	ArgsUsage: "<payouts.csv|payouts.yml>",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Check payouts without sending transactions",
		},
	},
	Action: payAction,
}

var payTokenCommand = cli.Command{
	Name:      "pay-token",
	Usage:     "Send NEP-17 token to recipients listed in the payout file using allowance given to the contract",
	ArgsUsage: "<payouts.csv|payouts.yml>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "token",
			Usage: "Address of the token contract",
		},
		cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Check payouts without sending transactions",
		},
	},
	Action: payTokenAction,
}

var eventsCommand = cli.Command{
	Name:      "events",
	Usage:     "Print BatchTransfer events of the transaction",
	ArgsUsage: "<txid>",
	Action:    eventsAction,
}

// commandEnv groups things needed by most commands.
type commandEnv struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
	cfg    config
	chain  *remoteBlockchain
}

func newCommandEnv(c *cli.Context, withWallet bool) (*commandEnv, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(c)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	chain, err := newRemoteBlockchain(ctx, cfg, withWallet)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("init remote blockchain: %w", err)
	}

	return &commandEnv{
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		cfg:    cfg,
		chain:  chain,
	}, nil
}

func (x *commandEnv) close() {
	x.chain.close()
	x.cancel()
	_ = x.log.Sync()
}

func deployAction(c *cli.Context) error {
	env, err := newCommandEnv(c, true)
	if err != nil {
		return err
	}
	defer env.close()

	ctr, err := contracts.ReadDir(c.String("dir"))
	if err != nil {
		return err
	}

	// configured address is required to update the contract, it's missing
	// before the first deployment only
	var known util.Uint160
	if env.cfg.Contract != "" {
		known, err = contractAddress(env.cfg)
		if err != nil {
			return err
		}
	}

	addr, err := deploy.Deploy(env.ctx, deploy.Prm{
		Logger:       env.log,
		Blockchain:   env.chain.rpc,
		LocalAccount: env.chain.account,
		NEF:          ctr.NEF,
		Manifest:     ctr.Manifest,
		Address:      known,
		MaxBatchSize: c.Int("max-batch-size"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Contract address: %s (%s)\n", address.Uint160ToString(addr), addr.StringLE())

	return nil
}

func infoAction(c *cli.Context) error {
	env, err := newCommandEnv(c, false)
	if err != nil {
		return err
	}
	defer env.close()

	addr, err := contractAddress(env.cfg)
	if err != nil {
		return err
	}

	info, err := deploy.ReadInfo(env.chain.rpc, env.chain.invoker, addr)
	if err != nil {
		return err
	}

	balance, err := gas.NewReader(env.chain.invoker).BalanceOf(addr)
	if err != nil {
		return fmt.Errorf("read GAS balance: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Address:        %s (%s)\n", address.Uint160ToString(addr), addr.StringLE())
	fmt.Fprintf(w, "NEF checksum:   %d\n", info.Checksum)
	fmt.Fprintf(w, "Version:        %s\n", info.Version)
	fmt.Fprintf(w, "Max batch size: %s\n", info.MaxBatchSize)
	fmt.Fprintf(w, "GAS balance:    %s\n", fixedn.ToString(balance, gasDecimals))

	return nil
}

func readPayouts(c *cli.Context, decimals int) (payouts.List, error) {
	if c.NArg() != 1 {
		return nil, errors.New("exactly one payout file expected")
	}

	return payouts.ReadFile(c.Args().First(), decimals)
}

func payAction(c *cli.Context) error {
	l, err := readPayouts(c, gasDecimals)
	if err != nil {
		return err
	}

	env, err := newCommandEnv(c, true)
	if err != nil {
		return err
	}
	defer env.close()

	addr, err := contractAddress(env.cfg)
	if err != nil {
		return err
	}

	p, err := batchtransfer.NewPreflight(batchtransfer.NewReader(env.chain.actor, addr))
	if err != nil {
		return err
	}

	var (
		from  = env.chain.account.ScriptHash()
		payer = batchtransfer.NewPayer(env.chain.actor, addr)
	)

	balance, err := gas.NewReader(env.chain.actor).BalanceOf(from)
	if err != nil {
		return fmt.Errorf("read GAS balance: %w", err)
	}

	total := l.Total()
	if balance.Cmp(total) < 0 {
		return fmt.Errorf("%w: need %s GAS, have %s", batchtransfer.ErrInsufficientFunds,
			fixedn.ToString(total, gasDecimals), fixedn.ToString(balance, gasDecimals))
	}

	return sendChunks(env, p, l, c.Bool("dry-run"), func(chunk payouts.List) (util.Uint256, uint32, error) {
		if amount, ok := chunk.EqualAmount(); ok {
			return payer.PayEqual(from, chunk.Recipients(), amount)
		}
		return payer.PayVarying(from, chunk.Recipients(), chunk.Amounts())
	})
}

func payTokenAction(c *cli.Context) error {
	token, err := payouts.ParseAddress(c.String("token"))
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	env, err := newCommandEnv(c, true)
	if err != nil {
		return err
	}
	defer env.close()

	decimals, err := nep17.NewReader(env.chain.actor, token).Decimals()
	if err != nil {
		return fmt.Errorf("read token decimals: %w", err)
	}

	l, err := readPayouts(c, decimals)
	if err != nil {
		return err
	}

	addr, err := contractAddress(env.cfg)
	if err != nil {
		return err
	}

	p, err := batchtransfer.NewPreflight(batchtransfer.NewReader(env.chain.actor, addr))
	if err != nil {
		return err
	}

	from := env.chain.account.ScriptHash()

	err = p.CheckTokenFunding(env.chain.actor, token, from, l.Total())
	if err != nil {
		return err
	}

	ctr := batchtransfer.New(env.chain.actor, addr)

	return sendChunks(env, p, l, c.Bool("dry-run"), func(chunk payouts.List) (util.Uint256, uint32, error) {
		if amount, ok := chunk.EqualAmount(); ok {
			return ctr.TransferToken(from, token, chunk.Recipients(), amount)
		}
		return ctr.TransferTokenVarying(from, token, chunk.Recipients(), chunk.Amounts())
	})
}

// sendChunks splits the list into batches the contract accepts, checks all of
// them and sends them one by one. Each batch is atomic, already sent batches
// are not reverted if the next one fails.
func sendChunks(env *commandEnv, p *batchtransfer.Preflight, l payouts.List, dryRun bool,
	send func(payouts.List) (util.Uint256, uint32, error)) error {
	chunks := l.Split(p.MaxBatchSize)

	for i := range chunks {
		err := validateChunk(p, chunks[i])
		if err != nil {
			return fmt.Errorf("batch #%d: %w", i, err)
		}
	}

	env.log.Info("payouts checked",
		zap.Int("recipients", len(l)), zap.Stringer("total", l.Total()), zap.Int("batches", len(chunks)))

	if dryRun {
		env.log.Info("dry run, nothing is sent")
		return nil
	}

	for i := range chunks {
		if err := env.ctx.Err(); err != nil {
			return err
		}

		res, err := env.chain.wait(send(chunks[i]))
		if err != nil {
			return fmt.Errorf("batch #%d (%d already sent): %w", i, i, err)
		}

		env.log.Info("batch sent",
			zap.Int("batch", i), zap.Int("recipients", len(chunks[i])),
			zap.Stringer("total", chunks[i].Total()), zap.Stringer("tx", res.Container))
	}

	return nil
}

// validateChunk checks the chunk the way it is going to be sent: as an equal
// batch if all amounts are the same and as a varying one otherwise.
func validateChunk(p *batchtransfer.Preflight, chunk payouts.List) error {
	var err error
	if amount, ok := chunk.EqualAmount(); ok {
		_, err = p.ValidateEqual(chunk.Recipients(), amount)
	} else {
		_, err = p.ValidateVarying(chunk.Recipients(), chunk.Amounts())
	}
	return err
}

func eventsAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one transaction hash expected")
	}

	h, err := util.Uint256DecodeStringLE(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid transaction hash: %w", err)
	}

	env, err := newCommandEnv(c, false)
	if err != nil {
		return err
	}
	defer env.close()

	addr, err := contractAddress(env.cfg)
	if err != nil {
		return err
	}

	log, err := env.chain.rpc.GetApplicationLog(h, nil)
	if err != nil {
		return fmt.Errorf("get application log: %w", err)
	}

	evs, err := batchtransfer.BatchTransferEventsFromApplicationLog(contractEvents(log, addr))
	if err != nil {
		return err
	}

	for i := range evs {
		total := evs[i].Total.String()
		if evs[i].Asset.Equals(gas.Hash) {
			total = fixedn.ToString(evs[i].Total, gasDecimals) + " GAS"
		}

		fmt.Fprintf(c.App.Writer, "%s paid %s of %s to %s recipients\n",
			address.Uint160ToString(evs[i].From), total, evs[i].Asset.StringLE(), evs[i].Count)
	}

	return nil
}

// contractEvents returns copy of the application log with notifications of the
// given contract only. Other contracts may throw notifications with the same
// name.
func contractEvents(log *result.ApplicationLog, contract util.Uint160) *result.ApplicationLog {
	if log == nil {
		return nil
	}

	res := *log
	res.Executions = make([]state.Execution, len(log.Executions))

	for i := range log.Executions {
		res.Executions[i] = log.Executions[i]
		res.Executions[i].Events = nil

		for _, e := range log.Executions[i].Events {
			if e.ScriptHash.Equals(contract) {
				res.Executions[i].Events = append(res.Executions[i].Events, e)
			}
		}
	}

	return &res
}
