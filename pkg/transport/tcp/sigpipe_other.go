//go:build !linux && !darwin

package tcp

const sendFlags = 0

func suppressSigpipe(fd int) {}
