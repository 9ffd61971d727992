package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"suilp-api/internal/svc"
)

// RegisterHandlers wires the API routes onto the server.
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{
			Method:  http.MethodGet,
			Path:    "/api/klines",
			Handler: KlinesHandler(svcCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/pool",
			Handler: PoolHandler(svcCtx),
		},
		{
			Method:  http.MethodGet,
			Path:    "/api/pools",
			Handler: PoolsHandler(svcCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/recommend",
			Handler: RecommendHandler(svcCtx),
		},
		{
			Method:  http.MethodPost,
			Path:    "/api/insight",
			Handler: InsightHandler(svcCtx),
		},
	})
}

// writeError emits the uniform error body with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	httpx.WriteJsonCtx(r.Context(), w, status, ErrorResp{Error: err.Error()})
}
