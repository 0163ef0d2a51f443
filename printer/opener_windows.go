//go:build windows

package printer

// Command lines are limited to 32767 characters.
const platformMaxURILength = 32767

func openCommand(uri string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", uri}
}
