package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var (
	getRuntime   = func() string { return runtime.GOOS }
	startCommand = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// OpenBrowser opens the default system browser on url, typically a result page served by `wordcount serve`.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	var name string
	var args []string
	switch rt := getRuntime(); rt {
	case "darwin":
		name, args = "open", []string{url}
	case "linux":
		name, args = "xdg-open", []string{url}
	case "windows":
		name, args = "cmd", []string{"/c", "start", url}
	default:
		return fmt.Errorf("%w: unsupported platform %s", ErrBrowserUnavailable, rt)
	}

	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}
	return nil
}

// ResultURL returns the address of a result page on the server at host:port.
func ResultURL(s ServerConfig, id string) string {
	return fmt.Sprintf("http://%s/result/%s", s.Addr(), id)
}
