package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32
	MessageMaxLength   = 2000
	StatusMaxLength    = 32

	DefaultMaxRequestSize = 1 << 20

	DefaultAccessTokenTTL = 30 * time.Minute
	DefaultAlgorithm      = "HS256"
	TrainingLockWindow    = 24 * time.Hour

	DefaultHTTPPort       = "8000"
	DefaultRequestTimeout = 10 * time.Second
	DefaultStoreDriver    = "postgres"
	DefaultDatabaseName   = "gym"

	DefaultUsersCollection          = "users"
	DefaultTrainingsCollection      = "trainings"
	DefaultAvailabilitiesCollection = "availabilities"
	DefaultNotificationsCollection  = "notifications"

	NotificationEmailSubject = "New Notification"
	EmailSendTimeout         = 30 * time.Second

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 5 * time.Second

	CircuitBreakerMaxRequests  = 1
	CircuitBreakerInterval     = 30 * time.Second
	CircuitBreakerTimeout      = 10 * time.Second
	CircuitBreakerFailureLimit = 5

	RateLimitTokenRequestsPerSecond   = 1.0
	RateLimitTokenBurst               = 5
	RateLimitGeneralRequestsPerSecond = 20.0
	RateLimitGeneralBurst             = 40
	RateLimitCleanupInterval          = 5 * time.Minute

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketPingPeriod      = (WebSocketPongWait * 9) / 10
	WebSocketMaxMessageSize  = 4096
	WebSocketSendBufSize     = 64
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	TracerBatchTimeout  = 5 * time.Second
	TracerExportTimeout = 30 * time.Second
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
