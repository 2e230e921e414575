//go:build windows

package capability

// localBackend is WIN when built for GOOS=windows.
const localBackend = WIN
