package ports

type ActivityMetrics interface {
	RecordActivity(activityKey string)
	RecordRejected(reason string)
	RecordConflict()
	RecordFailure()
}

type TurnMetrics interface {
	RecordTurn(changed, skipped, failed int)
}
