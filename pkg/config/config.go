package config

// this holds the resolved configuration values from CLI
var (
	DB                string // connection string for the database
	NatsURL           string // URL of the NATS server used as transport
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules for the dev logger
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry
	WaitForServices   string // duration to wait for other services to be ready
)
