package storage

import (
	"fmt"
	"os"
	"strings"
)

// parseMode maps an ISO C fopen-style mode string ("rb+", "wb+", "r",
// "w", "a+", ...) onto the os.O_* flags needed to reproduce it. The
// "b" (binary) marker is accepted and ignored -- Go makes no
// text/binary distinction.
func parseMode(mode string) (int, error) {
	m := strings.Replace(mode, "b", "", 1)

	switch m {
	case "r":
		return os.O_RDONLY, nil
	case "r+":
		return os.O_RDWR, nil
	case "w":
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case "w+":
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	case "a":
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, nil
	case "a+":
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
	default:
		return 0, fmt.Errorf("storage: unrecognized mode %q", mode)
	}
}
