package notifications

const (
	TypeJobFailed = "job_failed"

	subjectPrefix = "[pontosync]"
)

// TypeHeader tags outgoing mail with its notification type so mailbox
// rules can route alerts.
const TypeHeader = "X-Pontosync-Notification"
