package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	gateway "github.com/lifund/temigrate/apigateway"
	"github.com/lifund/temigrate/apperr"
	"github.com/lifund/temigrate/dashboard"
	"github.com/lifund/temigrate/grantees"
	"github.com/lifund/temigrate/proposals"
	"github.com/lifund/temigrate/store"
	"github.com/lifund/temigrate/temelio"
	"github.com/lifund/temigrate/utils"
)

var (
	logrusLogger    = logrus.New()
	cfg             temelio.Config
	auth            gateway.JWTAuth
	storeService    *store.Service
	granteesService grantees.Service
	grantsService   proposals.Service
	dashService     dashboard.Service
)

// setup loads the environment, opens the run store and wires the services.
// Every command calls it before doing anything.
func setup() error {
	// a missing .env is fine, the environment may be set directly
	if err := godotenv.Load(); err != nil {
		logrusLogger.Printf("no .env file loaded: %v", err)
	}

	var err error
	cfg, err = temelio.LoadFromEnv()
	if err != nil {
		return err
	}

	if cfg.IsDebug {
		logrusLogger.Level = logrus.DebugLevel
		logrusLogger.SetReportCaller(true)
	}

	database, err := utils.Database(cfg.DatabasePath)
	if err != nil {
		return err
	}
	if err := store.AutoMigrate(database); err != nil {
		return err
	}

	redisClient := utils.GetRedis(cfg.RedisAddr)
	client := temelio.NewClient(cfg, logrusLogger)

	auth = gateway.JWTAuth{Key: []byte(cfg.JWTKey)}
	storeService = store.New(database)
	granteesService = grantees.Service{Client: client, Store: storeService, Redis: redisClient, Logger: logrusLogger}
	grantsService = proposals.Service{Client: client, Store: storeService, Redis: redisClient, Logger: logrusLogger}
	dashService = dashboard.Service{Store: storeService, Logger: logrusLogger}
	return nil
}

// issueToken exchanges the admin key for a bearer token the migration
// endpoints accept.
func issueToken(c *gin.Context) {
	var req struct {
		Actor    string `json:"actor" binding:"required"`
		AdminKey string `json:"admin_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid := apperr.Wrap(err, apperr.ErrValidation, "")
		c.JSON(apperr.Status(invalid), apperr.Payload(invalid))
		return
	}
	if cfg.AdminKey == "" || req.AdminKey != cfg.AdminKey {
		wrong := apperr.Wrap(errors.New("wrong admin key"), apperr.ErrUnauthorized, "wrong admin key")
		c.JSON(apperr.Status(wrong), apperr.Payload(wrong))
		return
	}
	token, err := auth.GenerateJWT(req.Actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMainEngine function responsible for getting all of our routes to be delivered for gin
func GetMainEngine() *gin.Engine {
	route := gin.Default()
	route.HandleMethodNotAllowed = true
	route.Use(gateway.RequestID())

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(route)

	route.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": true})
	})
	route.POST("/auth/token", issueToken)

	migrations := route.Group("/migrations", auth.AuthMiddleware())
	{
		migrations.POST("/grantees", granteesService.CreateHandler)
		migrations.POST("/grantees/update", granteesService.UpdateHandler)
		migrations.POST("/orgs", granteesService.ImportHandler)
		migrations.POST("/grants", grantsService.CreateHandler)
		migrations.POST("/grants/stages", grantsService.UpdateStagesHandler)
	}

	runs := route.Group("/runs", auth.AuthMiddleware())
	{
		runs.GET("/", dashService.Runs)
		runs.GET("/count", dashService.RunsCount)
		runs.GET("/:id", dashService.RunByID)
	}
	return route
}
