/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "time"

// Version of ccnd, set by the linker at build time.
var Version string

// BuildTime records when this build of ccnd was produced.
var BuildTime string

// StartTimestamp is the time the daemon was started.
var StartTimestamp time.Time
