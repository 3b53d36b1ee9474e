package constants

// JobStatus is the lifecycle status of a queued extraction job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"   // finished; individual records may still carry errors
	JobStatusFailed  JobStatus = "FAILED" // the whole request failed
)

// CaptchaContext selects which CAPTCHA endpoint is used.
type CaptchaContext string

const (
	CaptchaLogin  CaptchaContext = "login"
	CaptchaSearch CaptchaContext = "search"
)
