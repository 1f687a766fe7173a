package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitMetrics holds rate limiting metrics
type RateLimitMetrics struct {
	TotalRequests     int64             `json:"total_requests"`
	AllowedRequests   int64             `json:"allowed_requests"`
	BlockedRequests   int64             `json:"blocked_requests"`
	BlockRate         float64           `json:"block_rate"`
	AverageResponseTime time.Duration   `json:"average_response_time"`
	EndpointStats     map[string]*EndpointStats `json:"endpoint_stats"`
	ClientStats       map[string]*ClientStats   `json:"client_stats"`
	LastUpdated       time.Time         `json:"last_updated"`
}

// EndpointStats holds statistics for a specific endpoint
type EndpointStats struct {
	Path              string    `json:"path"`
	Method            string    `json:"method"`
	TotalRequests     int64     `json:"total_requests"`
	AllowedRequests   int64     `json:"allowed_requests"`
	BlockedRequests   int64     `json:"blocked_requests"`
	BlockRate         float64   `json:"block_rate"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	LastRequest       time.Time `json:"last_request"`
}

// ClientStats holds statistics for a single rate limit key (API key or IP).
type ClientStats struct {
	ClientKey         string    `json:"client_key"`
	TotalRequests     int64     `json:"total_requests"`
	AllowedRequests   int64     `json:"allowed_requests"`
	BlockedRequests   int64     `json:"blocked_requests"`
	BlockRate         float64   `json:"block_rate"`
	LastRequest       time.Time `json:"last_request"`
}

// RateLimitMonitor provides monitoring and metrics for rate limiting
type RateLimitMonitor struct {
	redis     *redis.Client
	metrics   *RateLimitMetrics
	mutex     sync.RWMutex
	startTime time.Time
}

// NewRateLimitMonitor creates a new rate limit monitor
func NewRateLimitMonitor(redis *redis.Client) *RateLimitMonitor {
	monitor := &RateLimitMonitor{
		redis: redis,
		metrics: &RateLimitMetrics{
			EndpointStats: make(map[string]*EndpointStats),
			ClientStats:   make(map[string]*ClientStats),
		},
		startTime: time.Now(),
	}
	
	// Attempt to load existing metrics from Redis
	ctx := context.Background()
	_ = monitor.loadMetricsFromRedis(ctx)
	
	return monitor
}

// RecordRequest records a rate limit request
func (rm *RateLimitMonitor) RecordRequest(ctx context.Context, path, method, clientKey string, allowed bool, responseTime time.Duration) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	
	// Update global metrics
	rm.metrics.TotalRequests++
	if allowed {
		rm.metrics.AllowedRequests++
	} else {
		rm.metrics.BlockedRequests++
	}
	
	// Update block rate
	if rm.metrics.TotalRequests > 0 {
		rm.metrics.BlockRate = float64(rm.metrics.BlockedRequests) / float64(rm.metrics.TotalRequests) * 100
	}
	
	// Update average response time
	if rm.metrics.TotalRequests == 1 {
		rm.metrics.AverageResponseTime = responseTime
	} else {
		rm.metrics.AverageResponseTime = (rm.metrics.AverageResponseTime*time.Duration(rm.metrics.TotalRequests-1) + responseTime) / time.Duration(rm.metrics.TotalRequests)
	}
	
	// Update endpoint stats
	endpointKey := fmt.Sprintf("%s:%s", method, path)
	if stats, exists := rm.metrics.EndpointStats[endpointKey]; exists {
		stats.TotalRequests++
		if allowed {
			stats.AllowedRequests++
		} else {
			stats.BlockedRequests++
		}
		stats.BlockRate = float64(stats.BlockedRequests) / float64(stats.TotalRequests) * 100
		stats.AverageResponseTime = (stats.AverageResponseTime*time.Duration(stats.TotalRequests-1) + responseTime) / time.Duration(stats.TotalRequests)
		stats.LastRequest = time.Now()
	} else {
		rm.metrics.EndpointStats[endpointKey] = &EndpointStats{
			Path:              path,
			Method:            method,
			TotalRequests:     1,
			AllowedRequests:   func() int64 { if allowed { return 1 } else { return 0 } }(),
			BlockedRequests:   func() int64 { if allowed { return 0 } else { return 1 } }(),
			BlockRate:         func() float64 { if allowed { return 0 } else { return 100 } }(),
			AverageResponseTime: responseTime,
			LastRequest:       time.Now(),
		}
	}
	
	// Update client stats
	if clientKey != "" {
		if stats, exists := rm.metrics.ClientStats[clientKey]; exists {
			stats.TotalRequests++
			if allowed {
				stats.AllowedRequests++
			} else {
				stats.BlockedRequests++
			}
			stats.BlockRate = float64(stats.BlockedRequests) / float64(stats.TotalRequests) * 100
			stats.LastRequest = time.Now()
		} else {
			rm.metrics.ClientStats[clientKey] = &ClientStats{
				ClientKey:       clientKey,
				TotalRequests:   1,
				AllowedRequests: func() int64 { if allowed { return 1 } else { return 0 } }(),
				BlockedRequests: func() int64 { if allowed { return 0 } else { return 1 } }(),
				BlockRate:       func() float64 { if allowed { return 0 } else { return 100 } }(),
				LastRequest:     time.Now(),
			}
		}
	}
	
	rm.metrics.LastUpdated = time.Now()
	
	// Store metrics in Redis for persistence
	go rm.storeMetricsInRedis(ctx)
}

// GetMetrics returns current rate limiting metrics
func (rm *RateLimitMonitor) GetMetrics() *RateLimitMetrics {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	
	// Create a copy to avoid race conditions
	metricsCopy := *rm.metrics
	metricsCopy.EndpointStats = make(map[string]*EndpointStats)
	metricsCopy.ClientStats = make(map[string]*ClientStats)
	
	// Copy maps
	for k, v := range rm.metrics.EndpointStats {
		statsCopy := *v
		metricsCopy.EndpointStats[k] = &statsCopy
	}
	
	for k, v := range rm.metrics.ClientStats {
		statsCopy := *v
		metricsCopy.ClientStats[k] = &statsCopy
	}
	
	return &metricsCopy
}

// GetEndpointStats returns statistics for a specific endpoint
func (rm *RateLimitMonitor) GetEndpointStats(path, method string) *EndpointStats {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	
	endpointKey := fmt.Sprintf("%s:%s", method, path)
	if stats, exists := rm.metrics.EndpointStats[endpointKey]; exists {
		statsCopy := *stats
		return &statsCopy
	}
	
	return nil
}

// GetClientStats returns statistics for a specific client key.
func (rm *RateLimitMonitor) GetClientStats(clientKey string) *ClientStats {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	
	if stats, exists := rm.metrics.ClientStats[clientKey]; exists {
		statsCopy := *stats
		return &statsCopy
	}
	
	return nil
}

// GetTopBlockedEndpoints returns the top endpoints with highest block rates
func (rm *RateLimitMonitor) GetTopBlockedEndpoints(limit int) []*EndpointStats {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	
	var endpoints []*EndpointStats
	for _, stats := range rm.metrics.EndpointStats {
		endpoints = append(endpoints, stats)
	}
	
	// Sort by block rate (descending)
	for i := 0; i < len(endpoints)-1; i++ {
		for j := i + 1; j < len(endpoints); j++ {
			if endpoints[i].BlockRate < endpoints[j].BlockRate {
				endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
			}
		}
	}
	
	if limit > 0 && limit < len(endpoints) {
		endpoints = endpoints[:limit]
	}
	
	return endpoints
}

// GetTopBlockedClients returns the clients with the highest block rates.
func (rm *RateLimitMonitor) GetTopBlockedClients(limit int) []*ClientStats {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	
	var clients []*ClientStats
	for _, stats := range rm.metrics.ClientStats {
		clients = append(clients, stats)
	}
	
	// Sort by block rate (descending)
	for i := 0; i < len(clients)-1; i++ {
		for j := i + 1; j < len(clients); j++ {
			if clients[i].BlockRate < clients[j].BlockRate {
				clients[i], clients[j] = clients[j], clients[i]
			}
		}
	}
	
	if limit > 0 && limit < len(clients) {
		clients = clients[:limit]
	}
	
	return clients
}

// ResetMetrics resets all metrics
func (rm *RateLimitMonitor) ResetMetrics() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	
	rm.metrics = &RateLimitMetrics{
		EndpointStats: make(map[string]*EndpointStats),
		ClientStats:   make(map[string]*ClientStats),
	}
	rm.startTime = time.Now()
}

// storeMetricsInRedis stores metrics in Redis for persistence
func (rm *RateLimitMonitor) storeMetricsInRedis(ctx context.Context) {
	metrics := rm.GetMetrics()
	data, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	
	rm.redis.Set(ctx, "rate_limit:metrics", data, 24*time.Hour)
}

// loadMetricsFromRedis loads metrics from Redis
func (rm *RateLimitMonitor) loadMetricsFromRedis(ctx context.Context) error {
	data, err := rm.redis.Get(ctx, "rate_limit:metrics").Result()
	if err != nil {
		if err == redis.Nil {
			return nil // No metrics stored yet
		}
		return err
	}
	
	var metrics RateLimitMetrics
	if err := json.Unmarshal([]byte(data), &metrics); err != nil {
		return err
	}
	
	rm.mutex.Lock()
	rm.metrics = &metrics
	rm.mutex.Unlock()
	
	return nil
}

// GetUptime returns the uptime of the rate limit monitor
func (rm *RateLimitMonitor) GetUptime() time.Duration {
	return time.Since(rm.startTime)
}

// GetHealthStatus returns the health status of rate limiting
func (rm *RateLimitMonitor) GetHealthStatus() map[string]interface{} {
	metrics := rm.GetMetrics()
	
	status := map[string]interface{}{
		"status": "healthy",
		"uptime": rm.GetUptime().String(),
		"total_requests": metrics.TotalRequests,
		"block_rate": metrics.BlockRate,
		"average_response_time": metrics.AverageResponseTime.String(),
		"endpoint_count": len(metrics.EndpointStats),
		"client_count": len(metrics.ClientStats),
	}
	
	// Check if block rate is too high
	if metrics.BlockRate > 50 {
		status["status"] = "warning"
		status["warning"] = "High block rate detected"
	}
	
	// Check if response time is too high
	if metrics.AverageResponseTime > 100*time.Millisecond {
		status["status"] = "warning"
		status["warning"] = "High response time detected"
	}
	
	return status
}
