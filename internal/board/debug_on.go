//go:build cachexdebug

package board

const debugAssertions = true
