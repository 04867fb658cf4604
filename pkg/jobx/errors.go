package jobx

import (
	"net/http"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("JOBX")

var (
	CodeJobNotFound     = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeEnqueueFailed   = ErrRegistry.Register("ENQUEUE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to enqueue job")
	CodeQueueFailed     = ErrRegistry.Register("QUEUE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Job queue operation failed")
	CodeInvalidJob      = ErrRegistry.Register("INVALID_JOB", errx.TypeValidation, http.StatusBadRequest, "Invalid job definition")
	CodeAlreadyRunning  = ErrRegistry.Register("ALREADY_RUNNING", errx.TypeConflict, http.StatusConflict, "Worker is already running")
	CodeCorruptJobState = ErrRegistry.Register("CORRUPT_JOB", errx.TypeInternal, http.StatusInternalServerError, "Stored job could not be decoded")
)
