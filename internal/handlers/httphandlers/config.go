package httphandlers

import (
	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/hashfarm/internal/config"
)

func (h *HTTPHandler) GetConfig(ctx *gin.Context) {
	ctx.JSON(200, ConfigResponse{
		Version: config.BuildVersion,
		Config:  h.config.GetSanitized(),
	})
}

func (h *HTTPHandler) GetNonce(ctx *gin.Context) {
	ctx.JSON(200, NonceRequest{Nonce: h.farm.Nonce()})
}

func (h *HTTPHandler) SetNonce(ctx *gin.Context) {
	var req NonceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := h.farm.SetNonce(req.Nonce); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	h.log.Infof("nonce prefix set to %q", req.Nonce)
	ctx.JSON(200, NonceRequest{Nonce: h.farm.Nonce()})
}

func (h *HTTPHandler) GetThresholds(ctx *gin.Context) {
	ctx.JSON(200, ThresholdsRequest{TStart: h.farm.TStart(), TStop: h.farm.TStop()})
}

func (h *HTTPHandler) SetThresholds(ctx *gin.Context) {
	var req ThresholdsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if err := h.farm.SetTStartTStop(req.TStart, req.TStop); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	h.log.Infof("temperature thresholds set to %d..%d", req.TStart, req.TStop)
	ctx.JSON(200, ThresholdsRequest{TStart: h.farm.TStart(), TStop: h.farm.TStop()})
}
