package wsclient

import "errors"

var errHeartbeatTimeout = errors.New("wsclient: heartbeat pong timed out")
