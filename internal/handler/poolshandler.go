package handler

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"

	"suilp-api/internal/svc"
)

const maxPoolLimit = 100

// PoolsHandler lists verified pools ranked by a liquidity metric.
func PoolsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PoolsReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if req.Limit <= 0 {
			req.Limit = 20
		}
		if req.Limit > maxPoolLimit {
			req.Limit = maxPoolLimit
		}

		pools, err := svcCtx.Listing.Summaries(r.Context(), req.Limit, req.SortBy)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, PoolsResp{
			Pools:     pools,
			UpdatedAt: time.Now().UnixMilli(),
			SortBy:    req.SortBy,
		})
	}
}
