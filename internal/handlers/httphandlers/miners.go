package httphandlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
)

func (h *HTTPHandler) GetTelemetry(ctx *gin.Context) {
	t := h.farm.Telemetry()
	ctx.JSON(200, TelemetryResponse{
		Summary:       t.String(),
		UptimeSeconds: int(t.Uptime().Seconds()),
		Uptime:        t.UptimeString(),
		Hashrate:      lib.FormatHashes(t.Farm.Hashrate),
		Telemetry:     t,
	})
}

func (h *HTTPHandler) GetMiners(ctx *gin.Context) {
	t := h.farm.Telemetry()
	miners := h.farm.GetMiners()

	res := MinersResponse{
		IsMining: h.farm.IsMining(),
		Paused:   h.farm.Paused(),
		Hashrate: t.Farm.Hashrate,
		Miners:   make([]Miner, 0, len(miners)),
	}
	for _, m := range miners {
		res.Miners = append(res.Miners, h.mapMiner(m))
	}
	ctx.JSON(200, res)
}

func (h *HTTPHandler) GetMiner(ctx *gin.Context) {
	m, ok := h.minerParam(ctx)
	if !ok {
		return
	}
	ctx.JSON(200, h.mapMiner(m))
}

func (h *HTTPHandler) PauseMiner(ctx *gin.Context) {
	m, ok := h.minerParam(ctx)
	if !ok {
		return
	}
	h.farm.PauseMiner(m.Index())
	ctx.JSON(200, h.mapMiner(m))
}

func (h *HTTPHandler) ResumeMiner(ctx *gin.Context) {
	m, ok := h.minerParam(ctx)
	if !ok {
		return
	}
	h.farm.ResumeMiner(m.Index())
	ctx.JSON(200, h.mapMiner(m))
}

func (h *HTTPHandler) PauseFarm(ctx *gin.Context) {
	h.farm.Pause()
	ctx.JSON(200, gin.H{"status": "ok", "paused": true})
}

func (h *HTTPHandler) ResumeFarm(ctx *gin.Context) {
	h.farm.Resume()
	ctx.JSON(200, gin.H{"status": "ok", "paused": false})
}

func (h *HTTPHandler) minerParam(ctx *gin.Context) (*miner.Miner, bool) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		ctx.JSON(400, gin.H{"error": "invalid miner index"})
		return nil, false
	}
	m, ok := h.farm.GetMiner(index)
	if !ok {
		ctx.JSON(404, gin.H{"error": "miner not found"})
		return nil, false
	}
	return m, true
}

func (h *HTTPHandler) mapMiner(m *miner.Miner) Miner {
	d := m.Descriptor()
	res := Miner{
		Index:        m.Index(),
		Name:         m.Name(),
		UniqueID:     d.UniqueID,
		BoardName:    d.BoardName,
		Subscription: d.Subscription.String(),
		State:        m.State().String(),
		Epoch:        m.Epoch(),
		Initialized:  m.Initialized(),
		Paused:       m.Paused(),
		PauseReasons: m.PausedString(),
		Solutions:    h.farm.GetSolutionsFor(m.Index()),
	}

	t := h.farm.Telemetry()
	if m.Index() < len(t.Miners) {
		acc := t.Miners[m.Index()]
		res.Hashrate = acc.Hashrate
		res.EffectiveHashrate = acc.EffectiveHashrate
		res.EffectiveLong = acc.EffectiveHashrateLong
		res.VerifiedSolutions = acc.VerifiedSolutions
		if t.HwMon {
			sensors := acc.Sensors
			res.Sensors = &sensors
		}
	}
	return res
}
