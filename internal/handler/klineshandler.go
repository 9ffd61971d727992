package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"

	"suilp-api/internal/svc"
)

const defaultSymbol = "SUIUSDT"

// KlinesHandler serves candle series. With pool_id it resolves the pool's
// base/quote pair through the source chain; with symbol it queries the
// primary source directly.
func KlinesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req KlinesReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if req.Days <= 0 {
			req.Days = 30
		}
		endMs := time.Now().UnixMilli()
		startMs := endMs - int64(req.Days)*24*time.Hour.Milliseconds()

		if req.PoolID != "" {
			summary, err := svcCtx.Listing.PoolByID(r.Context(), req.PoolID)
			if err != nil {
				writeError(w, r, http.StatusInternalServerError, err)
				return
			}
			if summary == nil {
				writeError(w, r, http.StatusBadRequest, errors.New("pool not found"))
				return
			}
			result, err := resolveSeries(r.Context(), svcCtx, summary, req.PoolID, req.Interval, startMs, endMs)
			if err != nil {
				writeError(w, r, http.StatusInternalServerError, err)
				return
			}
			httpx.OkJsonCtx(r.Context(), w, result)
			return
		}

		symbol := req.Symbol
		if symbol == "" {
			symbol = defaultSymbol
		}
		klines, err := svcCtx.Primary.FetchKlines(r.Context(), symbol, req.Interval, startMs, endMs)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, klines)
	}
}
