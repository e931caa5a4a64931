package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type routeStat struct {
	requests int64
	bytes    int64
}

var (
	errorsUpstream  int64
	errorsAPI       int64
	warnsUpstream   int64
	warnsAPI        int64
	upstreamFetches int64
	requestsServed  int64
	premiumHits     int64
	expiryMisses    int64
	strikeMisses    int64
	routes          sync.Map // map[string]*routeStat
)

func recordWarn(component string) {
	if strings.Contains(component, "nse") {
		atomic.AddInt64(&warnsUpstream, 1)
	} else {
		atomic.AddInt64(&warnsAPI, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "nse") {
		atomic.AddInt64(&errorsUpstream, 1)
	} else {
		atomic.AddInt64(&errorsAPI, 1)
	}
}

// IncrementUpstreamFetch counts one round trip to the option-chain source.
func IncrementUpstreamFetch(size int) {
	atomic.AddInt64(&upstreamFetches, 1)
	recordRoute("nse_upstream", size)
}

// UpstreamFetchCount reports the number of upstream round trips so far.
func UpstreamFetchCount() int64 {
	return atomic.LoadInt64(&upstreamFetches)
}

func IncrementRequestServed(route string, size int) {
	atomic.AddInt64(&requestsServed, 1)
	recordRoute(route, size)
}

func IncrementPremiumHit() {
	atomic.AddInt64(&premiumHits, 1)
}

func IncrementExpiryMiss() {
	atomic.AddInt64(&expiryMisses, 1)
}

func IncrementStrikeMiss() {
	atomic.AddInt64(&strikeMisses, 1)
}

func recordRoute(name string, size int) {
	v, _ := routes.LoadOrStore(name, &routeStat{})
	rs := v.(*routeStat)
	atomic.AddInt64(&rs.requests, 1)
	atomic.AddInt64(&rs.bytes, int64(size))
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of system and request statistics.
// It exposes the internal startReport function for use by other packages.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)
	routeData := map[string]map[string]int64{}
	routes.Range(func(k, v any) bool {
		name := k.(string)
		rs := v.(*routeStat)
		routeData[name] = map[string]int64{
			"requests": atomic.LoadInt64(&rs.requests),
			"bytes":    atomic.LoadInt64(&rs.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_upstream":  atomic.LoadInt64(&errorsUpstream),
		"errors_api":       atomic.LoadInt64(&errorsAPI),
		"warns_upstream":   atomic.LoadInt64(&warnsUpstream),
		"warns_api":        atomic.LoadInt64(&warnsAPI),
		"upstream_fetches": atomic.LoadInt64(&upstreamFetches),
		"requests_served":  atomic.LoadInt64(&requestsServed),
		"premium_hits":     atomic.LoadInt64(&premiumHits),
		"expiry_misses":    atomic.LoadInt64(&expiryMisses),
		"strike_misses":    atomic.LoadInt64(&strikeMisses),
		"goroutines":       runtime.NumGoroutine(),
		"cpu_percent":      cpuPct,
		"memory_mb":        int64(memStats.Used) / 1024 / 1024,
		"disk_mb":          int64(diskStats.Used) / 1024 / 1024,
		"routes":           routeData,
		"net_bytes_sent":   int64(bytesSent),
		"net_bytes_recv":   int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("DiskMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(diskStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsUpstream"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_upstream"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsAPI"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["errors_api"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("WarnsUpstream"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_upstream"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("WarnsAPI"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["warns_api"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("UpstreamFetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["upstream_fetches"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("RequestsServed"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["requests_served"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("PremiumHits"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["premium_hits"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("ExpiryMisses"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["expiry_misses"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("StrikeMisses"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["strike_misses"].(int64)))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range routeData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("RouteRequests"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Route"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["requests"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("RouteBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Route"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
