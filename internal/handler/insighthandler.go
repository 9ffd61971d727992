package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"suilp-api/internal/svc"
	"suilp-api/pkg/insight"
)

// InsightHandler turns an engine recommendation into analyst commentary
// through the configured chat model.
func InsightHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InsightReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if len(req.Recommendation) == 0 {
			writeError(w, r, http.StatusBadRequest, errors.New("recommendation is required"))
			return
		}
		if svcCtx.Insight == nil {
			writeError(w, r, http.StatusServiceUnavailable, errors.New("insight is not configured"))
			return
		}

		recommendation, err := json.Marshal(req.Recommendation)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		prompt, err := insight.BuildPrompt(insight.PromptContext{
			PoolID:      req.PoolID,
			Days:        req.Days,
			Interval:    req.Interval,
			CapitalUSD:  req.Capital,
			KlineSource: req.KlineSource,
		}, recommendation, req.SelectedKey)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		text, err := svcCtx.Insight.Generate(r.Context(), prompt)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, InsightResp{Text: text})
	}
}
