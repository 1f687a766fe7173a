package ratelimit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// MonitoredRateLimitMiddleware creates a middleware that combines the shared
// per-endpoint rate limit with monitoring.
func MonitoredRateLimitMiddleware(manager *RateLimitManager, monitor *RateLimitMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		clientKey := DefaultKeyFunc(c)

		manager.Middleware()(c)

		responseTime := time.Since(start)
		allowed := !c.IsAborted()

		monitor.RecordRequest(
			c.Request.Context(),
			c.Request.URL.Path,
			c.Request.Method,
			clientKey,
			allowed,
			responseTime,
		)
	}
}

// MonitoredClientRateLimitMiddleware creates a middleware for per-API-key
// rate limiting with monitoring. The server's router does not install it.
func MonitoredClientRateLimitMiddleware(manager *RateLimitManager, monitor *RateLimitMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		clientKey := DefaultKeyFunc(c)

		manager.ClientSpecificMiddleware()(c)

		responseTime := time.Since(start)
		allowed := !c.IsAborted()

		monitor.RecordRequest(
			c.Request.Context(),
			c.Request.URL.Path,
			c.Request.Method,
			clientKey,
			allowed,
			responseTime,
		)
	}
}

// RateLimitMetricsHandler returns a handler for rate limit metrics
func RateLimitMetricsHandler(monitor *RateLimitMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics := monitor.GetMetrics()
		c.JSON(200, gin.H{
			"metrics": metrics,
			"uptime": monitor.GetUptime().String(),
		})
	}
}

// RateLimitHealthHandler returns a handler for rate limit health status
func RateLimitHealthHandler(monitor *RateLimitMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.GetHealthStatus()
		c.JSON(200, status)
	}
}

// RateLimitStatsHandler returns a handler for rate limit statistics
func RateLimitStatsHandler(monitor *RateLimitMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := c.DefaultQuery("limit", "10")
		limitInt := 10
		if l, err := strconv.Atoi(limit); err == nil {
			limitInt = l
		}
		
		stats := gin.H{
			"top_blocked_endpoints": monitor.GetTopBlockedEndpoints(limitInt),
			"top_blocked_clients":   monitor.GetTopBlockedClients(limitInt),
		}
		
		c.JSON(200, stats)
	}
}

// RateLimitConfigHandler returns a handler for rate limit configuration management
func RateLimitConfigHandler(manager *RateLimitManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET":
			// Get all endpoint configurations
			configs := manager.GetEndpointConfigs()
			c.JSON(200, gin.H{
				"endpoint_configs": configs,
			})
			
		case "POST":
			// Update endpoint configuration
			var config EndpointConfig
			if err := c.ShouldBindJSON(&config); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			
			manager.AddEndpointConfig(&config)
			c.JSON(200, gin.H{"message": "Configuration updated"})
			
		case "PUT":
			// Update specific endpoint configuration
			path := c.Param("path")
			method := c.Param("method")
			
			var config RateLimitConfig
			if err := c.ShouldBindJSON(&config); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			
			manager.UpdateEndpointConfig(path, method, &config)
			c.JSON(200, gin.H{"message": "Configuration updated"})
			
		case "DELETE":
			// Remove endpoint configuration
			path := c.Param("path")
			method := c.Param("method")
			
			manager.RemoveEndpointConfig(path, method)
			c.JSON(200, gin.H{"message": "Configuration removed"})
		}
	}
}

// RateLimitResetHandler returns a handler for resetting rate limits
func RateLimitResetHandler(manager *RateLimitManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Query("path")
		method := c.Query("method")
		key := c.Query("key")
		
		if path == "" || method == "" || key == "" {
			c.JSON(400, gin.H{"error": "path, method, and key are required"})
			return
		}
		
		err := manager.ResetRateLimit(c.Request.Context(), path, method, key)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		
		c.JSON(200, gin.H{"message": "Rate limit reset successfully"})
	}
}
