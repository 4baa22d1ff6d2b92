package ipc

const (
	maxEventStreamClients = 64

	maxWSReadBytesEventStream = 64 << 10
)
