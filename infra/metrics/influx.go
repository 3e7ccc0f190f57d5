package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/carehours/carebalance/core/metrics"
	"github.com/carehours/carebalance/infra/logger"
)

// InfluxSink writes run summaries to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.RunSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRunStats writes the run summary as a line protocol point.
func (s *InfluxSink) RecordRunStats(stats coremetrics.RunStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("balance_run").
		AddTag("run_id", stats.RunID).
		AddTag("component", "orchestrator").
		AddField("days_processed", stats.DaysProcessed).
		AddField("days_balanced", stats.DaysBalanced).
		AddField("days_unbalanced", stats.DaysUnbalanced).
		AddField("data_errors", stats.DataErrors).
		AddField("entries_modified", stats.EntriesModified).
		AddField("providers_added", stats.ProvidersAdded).
		AddField("provider_total_mean", round3(stats.ProviderTotalMean)).
		AddField("provider_total_stddev", round3(stats.ProviderTotalStdDev)).
		AddField("duration_ms", stats.End.Sub(stats.Start).Milliseconds()).
		SetTime(stats.End)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDayStats writes one point per processed day.
func (s *InfluxSink) RecordDayStats(recs []coremetrics.DayStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("balance_day").
			AddTag("run_id", r.RunID).
			AddTag("day", r.Day).
			AddTag("balanced", strconv.FormatBool(r.Balanced)).
			AddField("changes", r.Changes).
			AddField("escalated", r.Escalated).
			SetTime(r.RecordedAt)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
