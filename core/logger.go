/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var shouldPrintTraceLogs = false
var logLevel log.Level

// InitializeLogger configures the package-level logger from the loaded
// configuration (or its defaults if no configuration file was loaded).
func InitializeLogger() {
	log.SetHandler(text.New(os.Stdout))

	logLevelString := GetConfigStringDefault("core.log_level", "INFO")

	var err error
	logLevel, err = log.ParseLevel(logLevelString)
	if err == nil {
		log.SetLevel(logLevel)
	} else if logLevelString == "TRACE" {
		// apex/log has no TRACE level; fold it into DEBUG and gate
		// trace-level call sites on shouldPrintTraceLogs.
		log.SetLevel(log.DebugLevel)
		logLevel = log.DebugLevel
		shouldPrintTraceLogs = true
	} else {
		log.SetLevel(log.InfoLevel)
		logLevel = log.InfoLevel
	}
}

// EnableTraceFromDebugEnv reflects CCND_DEBUG (spec.md §6): any non-empty
// value enables verbose tracing; a numeric value >= 2 selects TRACE over
// DEBUG, matching the original ccnd's bitmask/level treatment of the
// same variable.
func EnableTraceFromDebugEnv(value string) {
	if value == "" {
		return
	}
	log.SetLevel(log.DebugLevel)
	logLevel = log.DebugLevel
	if n, err := strconv.Atoi(value); err == nil && n >= 2 {
		shouldPrintTraceLogs = true
	}
}

// LogFatal logs a message at the FATAL level and terminates the process.
func LogFatal(module interface{}, args ...interface{}) {
	log.Fatal(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
}

// LogError logs a message at the ERROR level.
func LogError(module interface{}, args ...interface{}) {
	if logLevel <= log.ErrorLevel {
		log.Error(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
	}
}

// LogWarn logs a message at the WARN level.
func LogWarn(module interface{}, args ...interface{}) {
	if logLevel <= log.WarnLevel {
		log.Warn(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
	}
}

// LogInfo logs a message at the INFO level.
func LogInfo(module interface{}, args ...interface{}) {
	if logLevel <= log.InfoLevel {
		log.Info(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
	}
}

// LogDebug logs a message at the DEBUG level.
func LogDebug(module interface{}, args ...interface{}) {
	if logLevel <= log.DebugLevel {
		log.Debug(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
	}
}

// LogTrace logs a message at the (emulated) TRACE level.
func LogTrace(module interface{}, args ...interface{}) {
	if logLevel <= log.DebugLevel && shouldPrintTraceLogs {
		log.Debug(fmt.Sprintf("[%v] ", module) + fmt.Sprint(args...))
	}
}
