package config

import "time"

// JobxConfig configures the worker that drains queued mail.
type JobxConfig struct {
	Concurrency     int
	Queues          []string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	DequeueTimeout  time.Duration
	KeyPrefix       string
}

func loadJobxConfig() JobxConfig {
	return JobxConfig{
		Concurrency:     getEnvInt("JOBX_CONCURRENCY", 2),
		Queues:          getEnvStringSlice("JOBX_QUEUES", []string{"mail"}),
		PollInterval:    getEnvDuration("JOBX_POLL_INTERVAL", time.Second),
		ShutdownTimeout: getEnvDuration("JOBX_SHUTDOWN_TIMEOUT", 15*time.Second),
		DequeueTimeout:  getEnvDuration("JOBX_DEQUEUE_TIMEOUT", 5*time.Second),
		KeyPrefix:       getEnv("JOBX_KEY_PREFIX", "quizcraft:jobs"),
	}
}
