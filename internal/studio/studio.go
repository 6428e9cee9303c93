// Package studio detects whether the process was started by a LangGraph
// Studio style server rather than from the command line.
package studio

import (
	"runtime"
	"strings"

	"github.com/tvme/intro-LangGraph/log"
)

// Markers are the lower-cased fragments that identify a studio frame.
var Markers = []string{
	"langgraph_api",
	"langgraph_runtime",
	"langgraph_server",
	"starlette",
}

// Frame is the part of a stack frame that detection looks at.
type Frame struct {
	File     string
	Function string
}

// IsRunningInStudio scans the current call stack for studio markers. Any
// failure while inspecting the stack is logged and reported as false.
func IsRunningInStudio() bool {
	return detect(Markers, callerFrames)
}

func callerFrames() []Frame {
	pcs := make([]uintptr, 128)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []Frame
	for {
		f, more := frames.Next()
		out = append(out, Frame{File: f.File, Function: f.Function})
		if !more {
			return out
		}
	}
}

func detect(markers []string, stack func() []Frame) (found bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("Error detecting studio environment: %v", r)
			found = false
		}
	}()

	for _, f := range stack() {
		file := strings.ToLower(f.File)
		fn := strings.ToLower(f.Function)
		for _, m := range markers {
			if strings.Contains(file, m) || strings.Contains(fn, m) {
				return true
			}
		}
	}
	return false
}
