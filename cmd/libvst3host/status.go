package main

import (
	"github.com/justyntemme/vst3host/pkg/errors"
)

// Status codes, mirrored by the VST3HOST_* enum in vst3host.h
const (
	statusOK               = 0
	statusInvalidHandle    = -1
	statusInvalidArgument  = -2
	statusNotActive        = -3
	statusProcessingActive = -4
	statusReleased         = -5
	statusFailed           = -6
)

// statusOf maps an error to a status code
func statusOf(err error) int32 {
	if err == nil {
		return statusOK
	}
	switch errors.KindOf(err) {
	case errors.KindNotActive:
		return statusNotActive
	case errors.KindProcessingActive:
		return statusProcessingActive
	case errors.KindReleased:
		return statusReleased
	default:
		return statusFailed
	}
}

// fail records err as the handle's last error and returns its status.
func (inst *instance) fail(err error) int32 {
	if err != nil {
		inst.setLastError(err.Error())
	}
	return statusOf(err)
}
