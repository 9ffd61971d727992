package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"suilp-api/internal/svc"
	poolpkg "suilp-api/pkg/pool"
)

// PoolHandler resolves one pool's trading configuration.
func PoolHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PoolReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if req.PoolID == "" {
			writeError(w, r, http.StatusBadRequest, errors.New("pool_id is required"))
			return
		}

		cfg, err := svcCtx.Pools.GetConfig(r.Context(), req.PoolID, svcCtx.PriceSource(req.PriceSource))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, poolpkg.ErrPoolNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, r, status, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, cfg)
	}
}
