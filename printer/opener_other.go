//go:build !windows && !darwin

package printer

// A single argument may not exceed MAX_ARG_STRLEN (131072 with the NUL).
const platformMaxURILength = 131071

func openCommand(uri string) (string, []string) {
	return "xdg-open", []string{uri}
}
