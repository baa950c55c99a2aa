package sysex

import "oscmix/internal/oscerr"

func newProtoErr(msg string) error {
	return oscerr.New(oscerr.Protocol, "sysex", msg)
}
