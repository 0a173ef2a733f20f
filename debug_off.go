//go:build !alogdebug

package alog

const debugBuild = false
