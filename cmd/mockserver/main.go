package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/personachat/internal/clients"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/models"
	"github.com/sleepstars/personachat/internal/server/middleware"
	"github.com/spf13/cobra"
)

var (
	port       int
	delay      time.Duration
	failStatus int
)

var rootCmd = &cobra.Command{
	Use:   "mockserver",
	Short: "OpenAI-compatible stub upstream answering with demo persona replies",
	Long: `mockserver answers POST /v1/chat/completions with canned persona replies.
Point personachat at it with OPENAI_API_BASE=http://localhost:8001/v1.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&port, "port", "p", 8001, "port to run the server on")
	flags.DurationVar(&delay, "delay", 0, "wait this long before answering")
	flags.IntVar(&failStatus, "fail-status", 0, "answer every request with this HTTP status instead of a reply")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger.InitLogger(logger.INFO, "mockserver")
	log := logger.GetLogger()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())

	demo := clients.NewDemoClient()

	r.POST("/v1/chat/completions", func(c *gin.Context) {
		var req models.ChatCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error(), "type": "invalid_request_error"}})
			return
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				return
			}
		}

		if failStatus != 0 {
			c.JSON(failStatus, gin.H{"error": gin.H{"message": "mock failure", "type": "server_error"}})
			return
		}

		resp, err := demo.Complete(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": err.Error(), "type": "server_error"}})
			return
		}
		if req.Model != "" {
			resp.Model = req.Model
		}
		c.PureJSON(http.StatusOK, resp)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info("Mock upstream listening on %s", addr)
	return r.Run(addr)
}
