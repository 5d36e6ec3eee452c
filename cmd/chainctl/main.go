// chainctl inspects a parsed blockchain dataset from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jessevdk/go-flags"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gyoonit/blocksci/internal/chaindb"
	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/pkg/workerpool"
)

var satoshisPerBTC = decimal.NewFromInt(100_000_000)

var opts struct {
	ConfigPath    string `long:"config" env:"CHAINCTL_CONFIG" description:"path to a data configuration yaml file"`
	DataDir       string `long:"data-dir" env:"CHAINCTL_DATA_DIR" description:"dataset directory (ignored when --config is set)"`
	Network       string `long:"network" env:"CHAINCTL_NETWORK" description:"chain network" default:"mainnet"`
	BlocksIgnored int    `long:"blocks-ignored" env:"CHAINCTL_BLOCKS_IGNORED" description:"blocks hidden from the tip"`
	ErrorOnReorg  bool   `long:"error-on-reorg" env:"CHAINCTL_ERROR_ON_REORG" description:"fail when the dataset records a reorg"`

	Stats    statsCmd    `command:"stats" description:"print chain totals"`
	Block    blockCmd    `command:"block" description:"show a block by height or hash"`
	Tx       txCmd       `command:"tx" description:"show a transaction by index or hash"`
	Address  addressCmd  `command:"address" description:"resolve an address string or prefix"`
	Segments segmentsCmd `command:"segments" description:"show a balanced chain partition"`
	Unspent  unspentCmd  `command:"unspent" description:"list unspent outputs"`
}

var rootCtx context.Context

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCtx = ctx

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func openChain() (*chaindb.Blockchain, error) {
	cfg, err := loadDataConfiguration()
	if err != nil {
		return nil, err
	}
	params, err := chaindb.ParamsForNetwork(opts.Network)
	if err != nil {
		return nil, err
	}
	return chaindb.Open(cfg, params, zap.NewNop())
}

func loadDataConfiguration() (chaindb.DataConfiguration, error) {
	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return chaindb.DataConfiguration{}, fmt.Errorf("read data configuration: %w", err)
		}
		return chaindb.DecodeDataConfiguration(data)
	}
	if opts.DataDir == "" {
		return chaindb.DataConfiguration{}, errors.New("either --config or --data-dir is required")
	}
	return chaindb.DataConfiguration{
		DataDirectory: opts.DataDir,
		ErrorOnReorg:  opts.ErrorOnReorg,
		BlocksIgnored: opts.BlocksIgnored,
	}, nil
}

func btc(satoshis int64) string {
	return decimal.NewFromInt(satoshis).Div(satoshisPerBTC).String()
}

type statsCmd struct{}

func (c *statsCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	fmt.Printf("network:      %s\n", chain.Params().Name)
	fmt.Printf("blocks:       %d\n", chain.BlockCount())
	fmt.Printf("transactions: %d\n", chain.TxCount())
	if chain.BlockCount() > 0 {
		tip, err := chain.Block(-1)
		if err != nil {
			return err
		}
		fmt.Printf("tip height:   %d\n", tip.Height)
		fmt.Printf("tip hash:     %s\n", tip.Hash)
		fmt.Printf("tip time:     %s\n", tip.Time.UTC())
	}
	fmt.Println("addresses by type:")
	for _, t := range model.AddressTypes() {
		count, err := chain.AddressCount(t)
		if err != nil {
			return err
		}
		fmt.Printf("  %-22s %d\n", t, count)
	}
	return nil
}

type blockCmd struct {
	Args struct {
		Ref string `positional-arg-name:"height|hash" required:"true"`
	} `positional-args:"true"`
}

func (c *blockCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	blk, err := resolveBlock(chain, c.Args.Ref)
	if err != nil {
		return err
	}
	fmt.Printf("height:        %d\n", blk.Height)
	fmt.Printf("hash:          %s\n", blk.Hash)
	fmt.Printf("time:          %s\n", blk.Time.UTC())
	fmt.Printf("transactions:  %d (first index %d)\n", blk.TxCount, blk.FirstTxIndex)
	return nil
}

func resolveBlock(chain *chaindb.Blockchain, ref string) (model.Block, error) {
	if height, err := strconv.Atoi(ref); err == nil {
		return chain.Block(height)
	}
	hash, err := chainhash.NewHashFromStr(ref)
	if err != nil {
		return model.Block{}, fmt.Errorf("%q is neither a height nor a block hash", ref)
	}
	return chain.BlockWithHash(*hash)
}

type txCmd struct {
	Args struct {
		Ref string `positional-arg-name:"index|hash" required:"true"`
	} `positional-args:"true"`
}

func (c *txCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	tx, err := resolveTx(chain, c.Args.Ref)
	if err != nil {
		return err
	}
	fmt.Printf("index:   %d\n", tx.Index)
	fmt.Printf("hash:    %s\n", tx.Hash)
	fmt.Printf("height:  %d\n", tx.Height)
	fmt.Printf("inputs:  %d\n", len(tx.Inputs))
	for i, in := range tx.Inputs {
		if in.Coinbase {
			fmt.Printf("  #%d coinbase\n", i)
			continue
		}
		fmt.Printf("  #%d spends tx %d output %d\n", i, in.PrevTx, in.PrevOut)
	}
	fmt.Printf("outputs: %d\n", len(tx.Outputs))
	for i, out := range tx.Outputs {
		status := "unspent"
		if out.Spent() {
			status = fmt.Sprintf("spent by tx %d input %d", out.SpentBy.Tx, out.SpentBy.Input)
		}
		fmt.Printf("  #%d %s BTC to %s/%d (%s)\n", i, btc(out.Value), out.Address.Type, out.Address.Num, status)
	}
	return nil
}

func resolveTx(chain *chaindb.Blockchain, ref string) (model.Transaction, error) {
	if index, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return chain.TxWithIndex(index)
	}
	hash, err := chainhash.NewHashFromStr(ref)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%q is neither an index nor a transaction hash", ref)
	}
	return chain.TxWithHash(*hash)
}

type addressCmd struct {
	Prefix bool   `long:"prefix" description:"treat the argument as an address prefix"`
	OfType string `long:"of-type" description:"list every address of this type instead of resolving one"`
	Args   struct {
		Address string `positional-arg-name:"address"`
	} `positional-args:"true"`
}

func (c *addressCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	if c.OfType != "" {
		return listAddressesOfType(chain, c.OfType)
	}
	if c.Args.Address == "" {
		return errors.New("an address argument or --of-type is required")
	}

	if c.Prefix {
		matches, err := chain.AddressesWithPrefix(c.Args.Address)
		if err != nil {
			return err
		}
		for _, v := range matches {
			encoded, err := v.Encode(chain.Params())
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", encoded, v.Kind())
		}
		fmt.Printf("%d matches\n", len(matches))
		return nil
	}

	v, err := chain.AddressFromString(c.Args.Address)
	if err != nil {
		return err
	}
	if v == nil {
		fmt.Println("address not seen on chain")
		return nil
	}
	fmt.Printf("type:    %s\n", v.Kind())
	fmt.Printf("payload: %x\n", v.Payload())
	return nil
}

func listAddressesOfType(chain *chaindb.Blockchain, name string) error {
	t, err := model.ParseAddressType(strings.ToLower(name))
	if err != nil {
		return err
	}

	listed := 0
	for v, err := range chain.AddressesOfType(t) {
		if err != nil {
			return err
		}
		if err := rootCtx.Err(); err != nil {
			return err
		}
		if v.Addressable() {
			encoded, err := v.Encode(chain.Params())
			if err != nil {
				return err
			}
			fmt.Printf("%d  %s\n", listed, encoded)
		} else {
			fmt.Printf("%d  payload %x\n", listed, v.Payload())
		}
		listed++
	}
	fmt.Printf("%d addresses of type %s\n", listed, t)
	return nil
}

type segmentsCmd struct {
	Count int `long:"count" description:"number of segments" default:"4"`
}

func (c *segmentsCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	segments, err := chain.Segment(c.Count)
	if err != nil {
		return err
	}

	type summary struct {
		blocks int
		txs    uint64
	}
	summaries, err := workerpool.Map(rootCtx, c.Count, segments, func(_ context.Context, seg chaindb.Segment) (summary, error) {
		return summary{blocks: seg.BlockCount(), txs: seg.TxCount()}, nil
	})
	if err != nil {
		return err
	}

	for i, seg := range segments {
		fmt.Printf("segment %d: heights [%d, %d), %d blocks, %d transactions\n",
			i, seg.Range.Start, seg.Range.Stop, summaries[i].blocks, summaries[i].txs)
	}
	return nil
}

type unspentCmd struct {
	Limit   int    `long:"limit" description:"list this many outputs instead of tallying"`
	Workers int    `long:"workers" description:"parallel segment workers for the tally" default:"4"`
	Address string `long:"address-type" description:"only outputs locked to this address type"`
}

func (c *unspentCmd) Execute([]string) error {
	chain, err := openChain()
	if err != nil {
		return err
	}
	defer chain.Close()

	var filter *model.AddressType
	if c.Address != "" {
		t, err := model.ParseAddressType(strings.ToLower(c.Address))
		if err != nil {
			return err
		}
		filter = &t
	}

	if c.Limit > 0 {
		return listUnspent(chain, filter, c.Limit)
	}
	return tallyUnspent(chain, filter, c.Workers)
}

func listUnspent(chain *chaindb.Blockchain, filter *model.AddressType, limit int) error {
	var total int64
	printed := 0
	for u, err := range chain.OutputsUnspent() {
		if err != nil {
			return err
		}
		if err := rootCtx.Err(); err != nil {
			return err
		}
		if filter != nil && u.Output.Address.Type != *filter {
			continue
		}
		fmt.Printf("tx %d (%s) output %d at height %d: %s BTC to %s/%d\n",
			u.Tx, u.TxHash, u.Index, u.Height, btc(u.Output.Value), u.Output.Address.Type, u.Output.Address.Num)
		total += u.Output.Value
		printed++
		if printed >= limit {
			break
		}
	}
	fmt.Printf("%d outputs, %s BTC total\n", printed, btc(total))
	return nil
}

// tallyUnspent splits the chain into balanced segments and sums unspent
// outputs in parallel, one worker per segment.
func tallyUnspent(chain *chaindb.Blockchain, filter *model.AddressType, workers int) error {
	segments, err := chain.Segment(workers)
	if err != nil {
		return err
	}

	type tally struct {
		outputs int
		value   int64
	}
	tallies, err := workerpool.Map(rootCtx, workers, segments, func(ctx context.Context, seg chaindb.Segment) (tally, error) {
		var t tally
		for blk := range seg.Blocks() {
			if err := ctx.Err(); err != nil {
				return tally{}, err
			}
			for tx, err := range chain.BlockTransactions(blk) {
				if err != nil {
					return tally{}, err
				}
				for _, out := range tx.Outputs {
					if out.Spent() {
						continue
					}
					if filter != nil && out.Address.Type != *filter {
						continue
					}
					t.outputs++
					t.value += out.Value
				}
			}
		}
		return t, nil
	})
	if err != nil {
		return err
	}

	var total tally
	for _, t := range tallies {
		total.outputs += t.outputs
		total.value += t.value
	}
	fmt.Printf("%d outputs, %s BTC total\n", total.outputs, btc(total.value))
	return nil
}
