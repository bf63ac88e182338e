package fire

import (
	"io"
	"net/http"
	"strconv"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func copyBody(w http.ResponseWriter, r io.Reader) {
	_, _ = io.Copy(w, r)
}
