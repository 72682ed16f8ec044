package httphandlers

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/TitanInd/hashfarm/internal/config"
	"gitlab.com/TitanInd/hashfarm/internal/farm"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
)

type Sanitizable interface {
	GetSanitized() interface{}
}

type HTTPHandler struct {
	farm     *farm.Farm
	config   Sanitizable
	readOnly bool
	log      interfaces.ILogger
}

func NewHTTPHandler(farm *farm.Farm, config Sanitizable, registry *prometheus.Registry, readOnly bool, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		farm:     farm,
		config:   config,
		readOnly: readOnly,
		log:      log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/config", handl.GetConfig)
	r.GET("/telemetry", handl.GetTelemetry)
	r.GET("/miners", handl.GetMiners)
	r.GET("/miners/:index", handl.GetMiner)
	r.GET("/nonce", handl.GetNonce)
	r.GET("/thresholds", handl.GetThresholds)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	w := r.Group("/", handl.Writable)
	w.POST("/miners/:index/pause", handl.PauseMiner)
	w.POST("/miners/:index/resume", handl.ResumeMiner)
	w.POST("/farm/pause", handl.PauseFarm)
	w.POST("/farm/resume", handl.ResumeFarm)
	w.POST("/restart", handl.Restart)
	w.POST("/reboot", handl.Reboot)
	w.POST("/nonce", handl.SetNonce)
	w.POST("/thresholds", handl.SetThresholds)

	r.Any("/debug/pprof/*action", gin.WrapF(pprof.Index))

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":   "healthy",
		"version":  config.BuildVersion,
		"isMining": h.farm.IsMining(),
	})
}

// Writable rejects state changes in read-only mode
func (h *HTTPHandler) Writable(ctx *gin.Context) {
	if h.readOnly {
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "api is read-only"})
		return
	}
	ctx.Next()
}

func (h *HTTPHandler) Restart(ctx *gin.Context) {
	h.farm.RestartAsync()
	ctx.JSON(200, gin.H{"status": "ok"})
}

func (h *HTTPHandler) Reboot(ctx *gin.Context) {
	if !h.farm.Reboot("api_reboot") {
		ctx.JSON(500, gin.H{"error": "reboot script not available"})
		return
	}
	ctx.JSON(200, gin.H{"status": "ok"})
}
