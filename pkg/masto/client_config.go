package masto

import (
	"time"

	"resty.dev/v3"
)

type ClientConfig struct {
	TransportSettings *resty.TransportSettings

	ResponseMiddlewares []resty.ResponseMiddleware
	RequestMiddlewares  []resty.RequestMiddleware
}

var DefaultConfig = &ClientConfig{
	TransportSettings: &resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		DialerKeepAlive:       2 * time.Second,
		IdleConnTimeout:       2 * time.Second,
		TLSHandshakeTimeout:   2 * time.Second,
		ExpectContinueTimeout: 2 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	},
}
