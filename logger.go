package h2dec

import (
	"log"
	"os"
)

// std is the package-level default log.Logger, matching
// serverConn.go:614's `var logger = log.New(os.Stdout, "[HTTP/2] ",
// log.LstdFlags)`.
var std = log.New(os.Stdout, "[h2dec] ", log.LstdFlags)

// defaultLogger adapts std to the fasthttp.Logger interface so
// DecoderConfig.Logger always has a usable zero value.
type defaultLogger struct{}

func (defaultLogger) Printf(format string, args ...interface{}) {
	std.Printf(format, args...)
}
