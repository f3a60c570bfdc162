package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"liquidityCore/internal/config"
	"liquidityCore/internal/dexmath"
	"liquidityCore/internal/exchange"
)

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("token0", "", "token0 class key (must sort before token1)")
	cmd.Flags().String("token1", "", "token1 class key")
	cmd.Flags().Uint32("fee", uint32(dexmath.Fee03), "fee tier (500, 3000, 10000)")
}

func addRangeFlags(cmd *cobra.Command) {
	addPoolFlags(cmd)
	cmd.Flags().Int32("tick-lower", 0, "lower tick of the range")
	cmd.Flags().Int32("tick-upper", 0, "upper tick of the range")
	cmd.Flags().String("position-id", "", "position id (defaults to the first position in the range)")
}

func poolKeyFromFlags(cmd *cobra.Command) (exchange.PoolKey, error) {
	token0, _ := cmd.Flags().GetString("token0")
	token1, _ := cmd.Flags().GetString("token1")
	fee, _ := cmd.Flags().GetUint32("fee")
	if token0 == "" || token1 == "" {
		return exchange.PoolKey{}, fmt.Errorf("token0 and token1 are required")
	}
	tier, err := dexmath.ParseFeeTier(fee)
	if err != nil {
		return exchange.PoolKey{}, err
	}
	return exchange.PoolKey{Token0: token0, Token1: token1, Fee: tier}, nil
}

func positionRefFromFlags(cmd *cobra.Command) (exchange.PositionRef, error) {
	key, err := poolKeyFromFlags(cmd)
	if err != nil {
		return exchange.PositionRef{}, err
	}
	lower, _ := cmd.Flags().GetInt32("tick-lower")
	upper, _ := cmd.Flags().GetInt32("tick-upper")
	id, _ := cmd.Flags().GetString("position-id")
	return exchange.PositionRef{PoolKey: key, TickLower: lower, TickUpper: upper, PositionID: id}, nil
}

// decimalFlag parses a decimal string flag; an empty value is zero.
func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse --%s: %w", name, err)
	}
	return d, nil
}

func nullDecimalFlag(cmd *cobra.Command, name string) (decimal.NullDecimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse --%s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func decimalFlags(cmd *cobra.Command, names ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(names))
	for i, name := range names {
		d, err := decimalFlag(cmd, name)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func ownerFlag(cmd *cobra.Command, cfg config.Config) string {
	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		return cfg.Identity
	}
	return owner
}

func newCreatePoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Create a pool at an initial sqrt price",
	}
	addPoolFlags(cmd)
	cmd.Flags().String("sqrt-price", "", "initial sqrt price (token1/token0)")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		key, err := poolKeyFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		price, err := decimalFlag(cmd, "sqrt-price")
		if err != nil {
			return nil, err
		}
		return svc.CreatePool(ctx, cfg.Identity, key, price)
	})
	return cmd
}

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Show pool state",
	}
	addPoolFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, _ config.Config) (any, error) {
		key, err := poolKeyFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.GetPool(ctx, key)
	})
	return cmd
}

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Deposit tokens into a price range",
	}
	addRangeFlags(cmd)
	cmd.Flags().String("amount0-desired", "", "token0 amount to deposit at most")
	cmd.Flags().String("amount1-desired", "", "token1 amount to deposit at most")
	cmd.Flags().String("amount0-min", "", "minimum token0 deposited")
	cmd.Flags().String("amount1-min", "", "minimum token1 deposited")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		ref, err := positionRefFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		amounts, err := decimalFlags(cmd, "amount0-desired", "amount1-desired", "amount0-min", "amount1-min")
		if err != nil {
			return nil, err
		}
		return svc.AddLiquidity(ctx, cfg.Identity, exchange.AddLiquidityRequest{
			PositionRef:    ref,
			Amount0Desired: amounts[0],
			Amount1Desired: amounts[1],
			Amount0Min:     amounts[2],
			Amount1Min:     amounts[3],
		})
	})
	return cmd
}

func removeRequestFromFlags(cmd *cobra.Command) (exchange.RemoveLiquidityRequest, error) {
	ref, err := positionRefFromFlags(cmd)
	if err != nil {
		return exchange.RemoveLiquidityRequest{}, err
	}
	amounts, err := decimalFlags(cmd, "liquidity", "amount0-min", "amount1-min")
	if err != nil {
		return exchange.RemoveLiquidityRequest{}, err
	}
	return exchange.RemoveLiquidityRequest{
		PositionRef: ref,
		Liquidity:   amounts[0],
		Amount0Min:  amounts[1],
		Amount1Min:  amounts[2],
	}, nil
}

func addRemoveFlags(cmd *cobra.Command) {
	addRangeFlags(cmd)
	cmd.Flags().String("liquidity", "", "liquidity to remove")
	cmd.Flags().String("amount0-min", "", "minimum token0 released")
	cmd.Flags().String("amount1-min", "", "minimum token1 released")
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn liquidity; released tokens become collectable",
	}
	addRemoveFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		req, err := removeRequestFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.RemoveLiquidity(ctx, cfg.Identity, req)
	})
	return cmd
}

func newEstimateBurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate-burn",
		Short: "Simulate remove-liquidity without committing",
	}
	addRemoveFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		req, err := removeRequestFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.EstimateBurn(ctx, cfg.Identity, req)
	})
	return cmd
}

func newEstimateLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate-liquidity",
		Short: "Estimate liquidity and the paired amount for a single-sided deposit",
	}
	addPoolFlags(cmd)
	cmd.Flags().Int32("tick-lower", 0, "lower tick of the range")
	cmd.Flags().Int32("tick-upper", 0, "upper tick of the range")
	cmd.Flags().String("amount", "", "deposit amount")
	cmd.Flags().Bool("is-token0", true, "amount is denominated in token0")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, _ config.Config) (any, error) {
		key, err := poolKeyFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		amount, err := decimalFlag(cmd, "amount")
		if err != nil {
			return nil, err
		}
		lower, _ := cmd.Flags().GetInt32("tick-lower")
		upper, _ := cmd.Flags().GetInt32("tick-upper")
		isToken0, _ := cmd.Flags().GetBool("is-token0")
		return svc.GetAmountForLiquidity(ctx, key, lower, upper, amount, isToken0)
	})
	return cmd
}

func addSwapFlags(cmd *cobra.Command) {
	addPoolFlags(cmd)
	cmd.Flags().Bool("zero-for-one", true, "sell token0 for token1")
	cmd.Flags().String("amount", "", "positive for exact input, negative for exact output")
	cmd.Flags().String("sqrt-price-limit", "", "price the swap may not cross")
	cmd.Flags().String("amount-in-max", "", "maximum amount paid")
	cmd.Flags().String("amount-out-min", "", "minimum amount received")
}

func swapRequestFromFlags(cmd *cobra.Command) (exchange.SwapRequest, error) {
	key, err := poolKeyFromFlags(cmd)
	if err != nil {
		return exchange.SwapRequest{}, err
	}
	req := exchange.SwapRequest{PoolKey: key}
	req.ZeroForOne, _ = cmd.Flags().GetBool("zero-for-one")
	if req.AmountSpecified, err = decimalFlag(cmd, "amount"); err != nil {
		return req, err
	}
	if req.SqrtPriceLimit, err = nullDecimalFlag(cmd, "sqrt-price-limit"); err != nil {
		return req, err
	}
	if req.AmountInMaximum, err = nullDecimalFlag(cmd, "amount-in-max"); err != nil {
		return req, err
	}
	if req.AmountOutMinimum, err = nullDecimalFlag(cmd, "amount-out-min"); err != nil {
		return req, err
	}
	return req, nil
}

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Trade against a pool",
	}
	addSwapFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		req, err := swapRequestFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.Swap(ctx, cfg.Identity, req)
	})
	return cmd
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap without committing it",
	}
	addSwapFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, _ config.Config) (any, error) {
		req, err := swapRequestFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.QuoteExactAmount(ctx, req)
	})
	return cmd
}

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Withdraw owed tokens from a position",
	}
	addRangeFlags(cmd)
	cmd.Flags().String("amount0", "", "token0 amount requested")
	cmd.Flags().String("amount1", "", "token1 amount requested")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		ref, err := positionRefFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		amounts, err := decimalFlags(cmd, "amount0", "amount1")
		if err != nil {
			return nil, err
		}
		return svc.Collect(ctx, cfg.Identity, exchange.CollectRequest{
			PositionRef:      ref,
			Amount0Requested: amounts[0],
			Amount1Requested: amounts[1],
		})
	})
	return cmd
}

func newEstimateFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate-fees",
		Short: "Show what a position could collect now",
	}
	addRangeFlags(cmd)
	cmd.Flags().String("owner", "", "position owner (defaults to the identity)")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		ref, err := positionRefFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.EstimateFees(ctx, ownerFlag(cmd, cfg), ref)
	})
	return cmd
}

func newPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show a position with fees accrued to date",
	}
	addRangeFlags(cmd)
	cmd.Flags().String("owner", "", "position owner (defaults to the identity)")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		ref, err := positionRefFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.GetPosition(ctx, ownerFlag(cmd, cfg), ref)
	})
	return cmd
}

func newSetProtocolFeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-protocol-fee",
		Short: "Set the protocol fee of a pool, or the default for new pools when no pool is given",
	}
	addPoolFlags(cmd)
	cmd.Flags().String("rate", "", "protocol share of swap fees, in [0, 1]")
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		rate, err := decimalFlag(cmd, "rate")
		if err != nil {
			return nil, err
		}
		if token0, _ := cmd.Flags().GetString("token0"); token0 == "" {
			return svc.SetDefaultProtocolFee(ctx, cfg.Identity, rate)
		}
		key, err := poolKeyFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.ConfigureProtocolFee(ctx, cfg.Identity, key, rate)
	})
	return cmd
}

func newCollectProtocolFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect-protocol-fees",
		Short: "Withdraw the protocol fees accrued by a pool",
	}
	addPoolFlags(cmd)
	cmd.RunE = runService(func(ctx context.Context, svc *exchange.Service, cfg config.Config) (any, error) {
		key, err := poolKeyFromFlags(cmd)
		if err != nil {
			return nil, err
		}
		return svc.CollectProtocolFees(ctx, cfg.Identity, key)
	})
	return cmd
}
