package messages

// Reply 是世界 actor 的统一应答，Err 不为空时 Value 无意义。
type Reply struct {
	Value any
	Err   error
}

type PlayerId int64
