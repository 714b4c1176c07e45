//go:build !slabdebug

package hyperslab

const debugPanics = false
