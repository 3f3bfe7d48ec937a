package server

import (
	"context"
	"log"
	"time"

	"tlb/config"
	"tlb/internal/constants"
	"tlb/internal/redis"
	"tlb/wires"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) Start() {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(CORSMiddleware())

	redis.Init(server.config, context.Background())
	wires.Init(server.config)
	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	r.Use(gin.Recovery())

	if _, err := wires.Instance.Store.EnsureTournament(constants.DayOf(time.Now())); err != nil {
		log.Fatal("Could not open today's tournament: " + err.Error())
	}

	sched, err := wires.Instance.Aggregator.StartScheduler()
	if err != nil {
		log.Fatal("Could not start the aggregation scheduler: " + err.Error())
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Println("Scheduler shutdown:", err)
		}
	}()
	defer wires.Instance.Hub.Stop()

	RegisterVersion(r, context.Background())

	err = r.Run(":" + server.config.Server.Port)

	if err != nil {
		log.Fatal("Could not start the server" + err.Error())
		return
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length")
		c.Writer.Header().Set("Access-Allow-Methods", "POST, GET")

		c.Next()
	}
}
