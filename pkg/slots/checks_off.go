//go:build slots_nochecks

package slots

const runtimeChecksDefault = false
