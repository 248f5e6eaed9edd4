package errors

import (
	"errors"
	"fmt"
)

// UpstreamCarrier is implemented by errors that originate from a marketplace
// HTTP response and still know which endpoint and status produced them.
type UpstreamCarrier interface {
	UpstreamStatus() int
	UpstreamEndpoint() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var carrier UpstreamCarrier
	if errors.As(err, &carrier) {
		d.UpstreamStatus = carrier.UpstreamStatus()
		d.UpstreamEndpoint = carrier.UpstreamEndpoint()
	}

	return d
}
