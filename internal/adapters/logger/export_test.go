package logger

var (
	CollectMessages = collectMessages
	FormatMessages  = formatMessages
)
