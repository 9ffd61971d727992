package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"
	"golang.org/x/sync/errgroup"

	"suilp-api/internal/svc"
	klinepkg "suilp-api/pkg/kline"
	poolpkg "suilp-api/pkg/pool"
	"suilp-api/pkg/quant"
)

var defaultStrategies = []string{"quantile", "volband", "swing"}

// RecommendHandler resolves the pool's candles and trading configuration in
// parallel, then asks the quant engine for range recommendations.
func RecommendHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecommendReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if req.PoolID == "" {
			writeError(w, r, http.StatusBadRequest, errors.New("pool_id is required"))
			return
		}
		if req.Days <= 0 {
			req.Days = 30
		}
		if req.Interval == "" {
			req.Interval = "1h"
		}
		if req.Profile == "" {
			req.Profile = "balanced"
		}
		if req.Capital <= 0 {
			req.Capital = 10000
		}
		if len(req.Strategies) == 0 {
			req.Strategies = defaultStrategies
		}

		summary, err := svcCtx.Listing.PoolByID(r.Context(), req.PoolID)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		if summary == nil {
			writeError(w, r, http.StatusBadRequest, errors.New("pool not found"))
			return
		}

		endMs := time.Now().UnixMilli()
		startMs := endMs - int64(req.Days)*24*time.Hour.Milliseconds()

		var (
			series  *klinepkg.Result
			poolCfg *poolpkg.Config
		)
		group, groupCtx := errgroup.WithContext(r.Context())
		group.Go(func() error {
			result, err := resolveSeries(groupCtx, svcCtx, summary, req.PoolID, req.Interval, startMs, endMs)
			if err != nil {
				return err
			}
			series = result
			return nil
		})
		group.Go(func() error {
			cfg, err := svcCtx.Pools.GetConfig(groupCtx, req.PoolID, svcCtx.PriceSource(req.PriceSource))
			if err != nil {
				return err
			}
			poolCfg = cfg
			return nil
		})
		if err := group.Wait(); err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		rows := make([][]float64, 0, len(series.Klines))
		for _, candle := range series.Klines {
			rows = append(rows, []float64{
				float64(candle.OpenTime),
				candle.Open, candle.High, candle.Low, candle.Close, candle.Volume,
			})
		}

		recommendation, err := svcCtx.Quant.Recommend(r.Context(), &quant.Request{
			Klines:       rows,
			CurrentPrice: poolCfg.CurrentPrice,
			TickSpacing:  poolCfg.TickSpacing,
			FeeRate:      poolCfg.FeeRate,
			Profile:      req.Profile,
			CapitalUSD:   req.Capital,
			Strategies:   req.Strategies,
		})
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		httpx.OkJsonCtx(r.Context(), w, RecommendResp{
			Recommendation: recommendation,
			KlineSource:    string(series.Source),
			BaseSymbol:     series.Base.Symbol,
			QuoteSymbol:    series.Quote.Symbol,
			QuoteUsdEntry:  series.QuoteUsdEntry,
		})
	}
}

// resolveSeries runs the source chain for the pool pair, with the pool-keyed
// endpoint as last resort.
func resolveSeries(ctx context.Context, svcCtx *svc.ServiceContext, summary *poolpkg.Summary, poolID, interval string, startMs, endMs int64) (*klinepkg.Result, error) {
	result, err := svcCtx.Klines.FetchKlinesForPool(ctx,
		klinepkg.Pool{CoinTypeA: summary.CoinTypeA, CoinTypeB: summary.CoinTypeB},
		interval, startMs, endMs)
	if err == nil {
		return result, nil
	}
	if svcCtx.PoolKlines == nil {
		return nil, err
	}
	klines, poolErr := svcCtx.PoolKlines.FetchKlines(ctx, poolID, interval, startMs, endMs)
	if poolErr != nil {
		return nil, fmt.Errorf("%w; pool source: %v", err, poolErr)
	}
	return &klinepkg.Result{Klines: klines, Source: klinepkg.SourcePoolKeyed}, nil
}
