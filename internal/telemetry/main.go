package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/syncromatics/go-kit/v2/cmd"
	"github.com/syncromatics/go-kit/v2/log"

	"particle-telemetry/sps30"
)

// Settings defines the configured settings for the telemetry node
type Settings struct {
	MetricsPort       int           `mapstructure:"metrics-port"`
	RoomName          string        `mapstructure:"room-name"`
	SensorNumber      string        `mapstructure:"sensor-number"`
	I2CAddr           uint8         `mapstructure:"i2c-addr"`
	I2CBus            int           `mapstructure:"i2c-bus"`
	MeasurementPeriod time.Duration `mapstructure:"measurement-period"`
	ScheduledSend     bool          `mapstructure:"scheduled-send"`
	SendInterval      time.Duration `mapstructure:"send-interval"`
	UTCOffset         time.Duration `mapstructure:"utc-offset"`
	Endpoints         []string      `mapstructure:"endpoints"`
	HTTPTimeout       time.Duration `mapstructure:"http-timeout"`
	TLSVerify         bool          `mapstructure:"tls-verify"`
	LinkInterface     string        `mapstructure:"link-interface"`
	LinkTimeout       time.Duration `mapstructure:"link-timeout"`
	AssociateCommand  string        `mapstructure:"associate-command"`
	ProbeURLs         []string      `mapstructure:"probe-urls"`
	StatusPin         string        `mapstructure:"status-pin"`
	ErrorLogPath      string        `mapstructure:"error-log"`
	ReadyTimeout      time.Duration `mapstructure:"ready-timeout"`
	ReadyPollInterval time.Duration `mapstructure:"ready-poll-interval"`
}

const (
	DefaultMetricsPort       int           = 9100
	DefaultRoomName          string        = "unassigned"
	DefaultSensorNumber      string        = "000"
	DefaultI2CBus            int           = 1
	DefaultMeasurementPeriod time.Duration = 15 * time.Second
	DefaultSendInterval      time.Duration = 15 * time.Minute
	DefaultUTCOffset         time.Duration = -7 * time.Hour
	DefaultHTTPTimeout       time.Duration = 15 * time.Second
	DefaultLinkInterface     string        = "wlan0"
	DefaultLinkTimeout       time.Duration = 10 * time.Second
	DefaultStatusPin         string        = "GPIO25"
)

var (
	DefaultEndpoints = []string{
		"https://nfhistory.nanofab.utah.edu/particle-data",
		"http://nfhistory.nanofab.utah.edu/particle-data",
		"https://155.98.11.8/particle-data",
	}
	DefaultProbeURLs = []string{
		"http://httpbin.org/ip",
		"http://google.com",
	}
)

func ConfigureFlags(flags *pflag.FlagSet) {
	flags.Int("metrics-port", DefaultMetricsPort, "Port on which to host Prometheus metrics")
	flags.String("room-name", DefaultRoomName, "Name of the room where this sensor is located")
	flags.String("sensor-number", DefaultSensorNumber, "Unique sensor identifier")
	flags.Uint8("i2c-addr", sps30.DefaultAddr, "I2C address of the Sensiron SPS30 sensor")
	flags.Int("i2c-bus", DefaultI2CBus, "I2C bus to which the Sensiron SPS30 sensor is attached")
	flags.Duration("measurement-period", DefaultMeasurementPeriod, "Interval between sensor reads")
	flags.Bool("scheduled-send", true, "Send at wall-clock aligned boundaries instead of every measurement")
	flags.Duration("send-interval", DefaultSendInterval, "Wall-clock interval between scheduled sends; must evenly divide one hour")
	flags.Duration("utc-offset", DefaultUTCOffset, "Offset applied to UTC for local timestamps and scheduling")
	flags.StringSlice("endpoints", DefaultEndpoints, "Ordered list of collector endpoints to attempt per send")
	flags.Duration("http-timeout", DefaultHTTPTimeout, "Per-request timeout for collector and probe requests")
	flags.Bool("tls-verify", false, "Verify TLS certificates; off allows the direct-IP HTTPS fallback")
	flags.String("link-interface", DefaultLinkInterface, "Network interface whose association gates transmission")
	flags.Duration("link-timeout", DefaultLinkTimeout, "How long to wait for the link to associate")
	flags.String("associate-command", "", "Optional shell command to initiate association when the link is down")
	flags.StringSlice("probe-urls", DefaultProbeURLs, "Known-good URLs fetched once at startup as a connectivity self-test")
	flags.String("status-pin", DefaultStatusPin, "GPIO pin name of the status LED; empty disables signaling")
	flags.String("error-log", "error_log.txt", "Path of the local error log; empty disables it")
	flags.Duration("ready-timeout", sps30.DefaultReadyTimeout, "How long to poll the data-ready flag during warm-up")
	flags.Duration("ready-poll-interval", sps30.DefaultReadyPollInterval, "Delay between data-ready polls")
}

// Execute hosts the metrics server and the sampling loop until either
// stops.
func Execute(settings *Settings) error {
	group := cmd.NewProcessGroup(context.Background())

	metricServer := http.Server{
		Addr:    fmt.Sprintf(":%d", settings.MetricsPort),
		Handler: nil,
	}
	log.Info("starting metrics server",
		"addr", metricServer.Addr)
	group.Go(func() error {
		http.Handle("/metrics", promhttp.Handler())
		return metricServer.ListenAndServe()
	})
	group.Go(func() error {
		<-group.Context().Done()
		log.Info("stopping metrics server")
		return metricServer.Close()
	})

	group.Go(func() error {
		return run(group.Context(), settings)
	})

	return group.Wait()
}
