//go:build darwin

package printer

// ARG_MAX is 256 KiB and shared with the environment.
const platformMaxURILength = 256*1024 - 4096

func openCommand(uri string) (string, []string) {
	return "open", []string{uri}
}
