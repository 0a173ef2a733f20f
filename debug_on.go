//go:build alogdebug

package alog

// Malformed records panic in the delivery goroutine
const debugBuild = true
