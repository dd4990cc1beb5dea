package server

import (
	handler "auction-ledger/services/auction/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures all Gin routes for the application. hub and
// gatherer are optional.
func SetupRouter(auctionService handler.AuctionServiceInterface, hub *Hub, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // X-Request-ID on every response
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)

	bids := router.Group("/bids")
	{
		bids.POST("", auctionHandler.RecordBidHandler)
		bids.GET("", auctionHandler.GetBidsHandler)
		bids.GET("/:id", auctionHandler.GetBidHandler)
	}

	router.POST("/withdrawals", auctionHandler.WithdrawHandler)
	router.POST("/finish", auctionHandler.FinishHandler)
	router.GET("/auction", auctionHandler.GetAuctionHandler)

	accounts := router.Group("/accounts")
	{
		accounts.GET("/:address/balance", auctionHandler.GetBalanceHandler)
	}

	events := router.Group("/events")
	{
		events.GET("", auctionHandler.GetEventsHandler)
		if hub != nil {
			events.GET("/ws", hub.ServeWS)
		}
	}

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}
